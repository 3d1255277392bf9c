package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dhobigo/internal/geocode"
	"github.com/dhobigo/internal/logger"
	"github.com/dhobigo/internal/models"
	"github.com/dhobigo/internal/repository"
)

// AddressInput 地址入参
type AddressInput struct {
	Label     string `json:"label"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
	IsDefault bool   `json:"is_default"`
}

// AddressService 地址服务
// 地理编码失败不阻塞保存，坐标留空
type AddressService struct {
	repo     repository.AddressRepository
	geocoder *geocode.Client
}

// NewAddressService 创建地址服务
func NewAddressService(repo repository.AddressRepository, geocoder *geocode.Client) *AddressService {
	return &AddressService{repo: repo, geocoder: geocoder}
}

// List 查询用户地址列表
func (s *AddressService) List(userID uint) ([]models.Address, error) {
	return s.repo.ListByUser(userID)
}

// Create 新增地址
func (s *AddressService) Create(ctx context.Context, userID uint, input AddressInput) (*models.Address, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	address := &models.Address{
		UserID:    userID,
		Label:     strings.TrimSpace(input.Label),
		Line1:     strings.TrimSpace(input.Line1),
		Line2:     strings.TrimSpace(input.Line2),
		City:      strings.TrimSpace(input.City),
		State:     strings.TrimSpace(input.State),
		Pincode:   strings.TrimSpace(input.Pincode),
		IsDefault: input.IsDefault,
	}
	if address.Line1 == "" || address.City == "" || address.Pincode == "" {
		return nil, ErrAddressIncomplete
	}

	s.geocodeAddress(ctx, address)

	if address.IsDefault {
		if err := s.repo.ClearDefault(userID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Create(address); err != nil {
		return nil, err
	}
	return address, nil
}

// Update 更新地址
func (s *AddressService) Update(ctx context.Context, id, userID uint, input AddressInput) (*models.Address, error) {
	address, err := s.repo.GetByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}

	locationChanged := address.Line1 != strings.TrimSpace(input.Line1) ||
		address.City != strings.TrimSpace(input.City) ||
		address.Pincode != strings.TrimSpace(input.Pincode)

	address.Label = strings.TrimSpace(input.Label)
	address.Line1 = strings.TrimSpace(input.Line1)
	address.Line2 = strings.TrimSpace(input.Line2)
	address.City = strings.TrimSpace(input.City)
	address.State = strings.TrimSpace(input.State)
	address.Pincode = strings.TrimSpace(input.Pincode)

	if locationChanged {
		address.Geocoded = false
		address.Latitude = nil
		address.Longitude = nil
		s.geocodeAddress(ctx, address)
	}

	if input.IsDefault && !address.IsDefault {
		if err := s.repo.ClearDefault(userID); err != nil {
			return nil, err
		}
		address.IsDefault = true
	}

	if err := s.repo.Update(address); err != nil {
		return nil, err
	}
	return address, nil
}

// Delete 删除地址
func (s *AddressService) Delete(id, userID uint) error {
	address, err := s.repo.GetByIDAndUser(id, userID)
	if err != nil {
		return err
	}
	if address == nil {
		return ErrAddressNotFound
	}
	return s.repo.Delete(id, userID)
}

func (s *AddressService) geocodeAddress(ctx context.Context, address *models.Address) {
	if s.geocoder == nil {
		return
	}
	query := fmt.Sprintf("%s, %s, %s %s", address.Line1, address.City, address.State, address.Pincode)
	result, err := s.geocoder.Forward(ctx, query)
	if err != nil {
		logger.Warnw("address_geocode_failed", "error", err)
		return
	}
	address.Latitude = &result.Latitude
	address.Longitude = &result.Longitude
	address.Geocoded = true
}
