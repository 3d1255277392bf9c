package public

import (
	"errors"
	"strconv"

	"github.com/dhobigo/internal/http/response"
	"github.com/dhobigo/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAddresses 获取当前用户地址列表
func (h *Handler) ListAddresses(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	addresses, err := h.AddressService.List(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list addresses", err)
		return
	}
	response.Success(c, addresses)
}

// CreateAddress 新增地址
func (h *Handler) CreateAddress(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var input service.AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	address, err := h.AddressService.Create(c.Request.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAddressIncomplete):
			respondError(c, response.CodeBadRequest, "address line, city and pincode are required", nil)
		default:
			respondError(c, response.CodeInternal, "failed to create address", err)
		}
		return
	}
	response.Success(c, address)
}

// UpdateAddress 更新地址
func (h *Handler) UpdateAddress(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid address id", nil)
		return
	}

	var input service.AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	address, err := h.AddressService.Update(c.Request.Context(), uint(id), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAddressNotFound):
			respondError(c, response.CodeNotFound, "address not found", nil)
		default:
			respondError(c, response.CodeInternal, "failed to update address", err)
		}
		return
	}
	response.Success(c, address)
}

// DeleteAddress 删除地址
func (h *Handler) DeleteAddress(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid address id", nil)
		return
	}

	if err := h.AddressService.Delete(uint(id), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrAddressNotFound):
			respondError(c, response.CodeNotFound, "address not found", nil)
		default:
			respondError(c, response.CodeInternal, "failed to delete address", err)
		}
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
