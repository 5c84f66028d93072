package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	hoteldomain "github.com/smallbiznis/innledger/internal/hotel/domain"
	provisioningdomain "github.com/smallbiznis/innledger/internal/provisioning/domain"
	"github.com/smallbiznis/innledger/pkg/db/pagination"
)

type listHotelsQuery struct {
	pagination.Pagination
	HotelCode string `form:"hotel_code"`
	Name      string `form:"name"`
	IsActive  string `form:"is_active"`
}

type SetHotelStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func (s *Server) ListHotels(c *gin.Context) {
	var query listHotelsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	active, err := parseOptionalBool(query.IsActive)
	if err != nil {
		AbortWithError(c, newValidationError("is_active", "invalid_is_active", "invalid is_active"))
		return
	}

	resp, err := s.hotelSvc.List(c.Request.Context(), hoteldomain.ListHotelRequest{
		Pagination: query.Pagination,
		HotelCode:  strings.TrimSpace(query.HotelCode),
		Name:       strings.TrimSpace(query.Name),
		IsActive:   active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newHotelViews(resp.Hotels), "page_info": resp.PageInfo})
}

func (s *Server) ProvisionHotel(c *gin.Context) {
	var req provisioningdomain.ProvisionHotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	result, err := s.provisioningSvc.ProvisionHotel(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": result})
}

func (s *Server) GetHotelByID(c *gin.Context) {
	hotelID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil || hotelID == 0 {
		AbortWithError(c, hoteldomain.ErrInvalidID)
		return
	}

	hotel, err := s.hotelSvc.GetByID(c.Request.Context(), hotelID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newHotelView(hotel)})
}

func (s *Server) SetHotelStatus(c *gin.Context) {
	hotelID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil || hotelID == 0 {
		AbortWithError(c, hoteldomain.ErrInvalidID)
		return
	}

	var req SetHotelStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	hotel, err := s.hotelSvc.SetActive(c.Request.Context(), hotelID, *req.IsActive)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newHotelView(hotel)})
}
