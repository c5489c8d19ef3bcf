package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skyfare/flightbooking/internal/service/auth"
)

type AuthHandler struct {
	service auth.AuthUseCase
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func NewAuthHandler(service auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(router *gin.RouterGroup) {
	router.POST("/register", h.register)
	router.POST("/login", h.login)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req auth.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResponse{ID: user.ID, Email: user.Email, FullName: user.FullName, Role: string(user.Role)})
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"user":         userResponse{ID: user.ID, Email: user.Email, FullName: user.FullName, Role: string(user.Role)},
	})
}
