package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	roomdomain "github.com/smallbiznis/innledger/internal/room/domain"
)

type CreateRoomRequest struct {
	RoomNumber string `json:"room_number" binding:"required"`
	RoomName   string `json:"room_name"`
}

type UpdateRoomRequest struct {
	RoomName *string `json:"room_name"`
	IsActive *bool   `json:"is_active"`
}

func (s *Server) ListRooms(c *gin.Context) {
	activeOnly, err := parseOptionalBool(c.Query("active"))
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "invalid active"))
		return
	}

	rooms, err := s.roomSvc.List(c.Request.Context(), activeOnly != nil && *activeOnly)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rooms})
}

func (s *Server) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	room, err := s.roomSvc.Create(c.Request.Context(), roomdomain.CreateRoomRequest{
		RoomNumber: req.RoomNumber,
		RoomName:   req.RoomName,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": room})
}

func (s *Server) UpdateRoom(c *gin.Context) {
	var req UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	room, err := s.roomSvc.Update(c.Request.Context(), c.Param("id"), roomdomain.UpdateRoomRequest{
		RoomName: req.RoomName,
		IsActive: req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": room})
}
