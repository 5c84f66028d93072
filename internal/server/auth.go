package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/innledger/internal/auth/domain"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type loginView struct {
	Token              string `json:"token"`
	ExpiresAt          string `json:"expires_at"`
	UserID             string `json:"user_id"`
	Role               string `json:"role"`
	HotelID            string `json:"hotel_id,omitempty"`
	MustChangePassword bool   `json:"must_change_password"`
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	view := loginView{
		Token:              result.Token,
		ExpiresAt:          result.ExpiresAt.UTC().Format(time.RFC3339),
		UserID:             result.UserID.String(),
		Role:               result.Role,
		MustChangePassword: result.MustChangePassword,
	}
	if result.HotelID != 0 {
		view.HotelID = result.HotelID.String()
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) ChangePassword(c *gin.Context) {
	userID, err := callerUserID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	if err := s.authsvc.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": "ok"}})
}

// Me returns the signed-in account and, for hotel accounts, the hotel profile.
func (s *Server) Me(c *gin.Context) {
	userID, err := callerUserID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	user, err := s.authsvc.GetUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body := gin.H{
		"user": gin.H{
			"id":                   user.ID.String(),
			"email":                user.Email,
			"role":                 user.Role,
			"must_change_password": user.MustChangePassword,
		},
	}
	if user.Role == authdomain.RoleHotel {
		hotel, err := s.hotelSvc.GetByUserID(c.Request.Context(), user.ID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		body["hotel"] = newHotelView(hotel)
	}
	c.JSON(http.StatusOK, gin.H{"data": body})
}
