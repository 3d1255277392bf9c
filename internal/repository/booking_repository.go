package repository

import (
	"errors"
	"strings"

	"github.com/dhobigo/internal/constants"
	"github.com/dhobigo/internal/models"

	"gorm.io/gorm"
)

// BookingRepository 洗衣订单数据访问接口
type BookingRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormBookingRepository

	GetByID(id uint) (*models.Booking, error)
	GetByIDAndUser(id, userID uint) (*models.Booking, error)
	GetByBookingNo(bookingNo string) (*models.Booking, error)
	Create(booking *models.Booking) error
	Update(booking *models.Booking) error
	UpdateStatus(id uint, status string) error
	List(filter BookingListFilter) ([]models.Booking, int64, error)
	CountNonCanceledByUser(userID uint) (int64, error)
}

// GormBookingRepository GORM 实现
type GormBookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository 创建订单仓库
func NewBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBookingRepository) WithTx(tx *gorm.DB) *GormBookingRepository {
	if tx == nil {
		return r
	}
	return &GormBookingRepository{db: tx}
}

// Transaction 执行事务
func (r *GormBookingRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 根据 ID 获取订单
func (r *GormBookingRepository) GetByID(id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.Preload("Items").Preload("Address").First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// GetByIDAndUser 根据 ID 与用户获取订单
func (r *GormBookingRepository) GetByIDAndUser(id, userID uint) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.Preload("Items").Preload("Address").
		Where("id = ? AND user_id = ?", id, userID).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// GetByBookingNo 根据订单号获取订单
func (r *GormBookingRepository) GetByBookingNo(bookingNo string) (*models.Booking, error) {
	normalized := strings.TrimSpace(bookingNo)
	if normalized == "" {
		return nil, nil
	}
	var record models.Booking
	err := r.db.Preload("Items").Preload("Address").
		Where("booking_no = ?", normalized).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Create 创建订单
func (r *GormBookingRepository) Create(booking *models.Booking) error {
	return r.db.Create(booking).Error
}

// Update 更新订单
func (r *GormBookingRepository) Update(booking *models.Booking) error {
	return r.db.Save(booking).Error
}

// UpdateStatus 更新订单状态
func (r *GormBookingRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Booking{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

// List 查询订单列表
func (r *GormBookingRepository) List(filter BookingListFilter) ([]models.Booking, int64, error) {
	query := r.db.Model(&models.Booking{})

	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.BookingNo != "" {
		query = query.Where("booking_no = ?", filter.BookingNo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var bookings []models.Booking
	if err := query.Preload("Items").Order("id desc").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountNonCanceledByUser 统计用户未取消的订单数量
func (r *GormBookingRepository) CountNonCanceledByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Booking{}).
		Where("user_id = ? AND status <> ?", userID, constants.BookingStatusCanceled).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
