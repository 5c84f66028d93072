package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/innledger/internal/assets"
	hoteldomain "github.com/smallbiznis/innledger/internal/hotel/domain"
)

type UpdateHotelProfileRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
}

type CompleteProfileRequest struct {
	Name        string                  `json:"name" binding:"required"`
	Address     string                  `json:"address" binding:"required"`
	GST         hoteldomain.GSTSettings `json:"gst"`
	NewPassword string                  `json:"new_password" binding:"required"`
}

func (s *Server) GetHotel(c *gin.Context) {
	hotelID, err := callerHotelID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	hotel, err := s.hotelSvc.GetByID(c.Request.Context(), hotelID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newHotelView(hotel)})
}

func (s *Server) UpdateHotelProfile(c *gin.Context) {
	hotelID, err := callerHotelID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req UpdateHotelProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	hotel, err := s.hotelSvc.UpdateProfile(c.Request.Context(), hotelID, hoteldomain.UpdateProfileRequest{
		Name:    req.Name,
		Address: req.Address,
		Email:   req.Email,
		Phone:   req.Phone,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newHotelView(hotel)})
}

func (s *Server) UpdateHotelGST(c *gin.Context) {
	hotelID, err := callerHotelID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req hoteldomain.GSTSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	hotel, err := s.hotelSvc.UpdateGST(c.Request.Context(), hotelID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newHotelView(hotel)})
}

func (s *Server) CompleteHotelProfile(c *gin.Context) {
	hotelID, err := callerHotelID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req CompleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	hotel, err := s.hotelSvc.CompleteProfile(c.Request.Context(), hotelID, hoteldomain.CompleteProfileRequest{
		Name:        req.Name,
		Address:     req.Address,
		GST:         req.GST,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newHotelView(hotel)})
}

func (s *Server) UploadHotelLogo(c *gin.Context) {
	s.uploadAsset(c, assets.KindLogo)
}

func (s *Server) UploadHotelSignature(c *gin.Context) {
	s.uploadAsset(c, assets.KindSignature)
}

func (s *Server) uploadAsset(c *gin.Context, kind assets.Kind) {
	hotelID, err := callerHotelID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "required", "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		AbortWithError(c, assets.ErrInvalidImage)
		return
	}
	defer file.Close()

	hotel, err := s.assetSvc.Upload(c.Request.Context(), hotelID, kind, file)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newHotelView(hotel)})
}
