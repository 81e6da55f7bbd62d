package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/concierge/concierge/internal/appointment"
	"github.com/concierge/concierge/internal/schema"
)

// AppointmentRepository is the gorm implementation of appointment.Repository.
type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, appt *schema.Appointment) error {
	if err := r.db.WithContext(ctx).Create(appt).Error; err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) ListActive(ctx context.Context) ([]schema.Appointment, error) {
	var appts []schema.Appointment
	err := r.db.WithContext(ctx).
		Where("status IN ?", []schema.AppointmentStatus{schema.StatusScheduled, schema.StatusConfirmed}).
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("list active appointments: %w", err)
	}
	return appts, nil
}

func (r *AppointmentRepository) List(ctx context.Context, filter appointment.ListFilter) ([]schema.Appointment, error) {
	q := r.db.WithContext(ctx).Order("date ASC")
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.ClientEmail != nil {
		q = q.Where("client_email = ?", *filter.ClientEmail)
	}
	var appts []schema.Appointment
	if err := q.Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

func (r *AppointmentRepository) FindByClient(ctx context.Context, email string, date *time.Time) ([]schema.Appointment, error) {
	q := r.db.WithContext(ctx).Where("client_email = ?", email).Order("date DESC")
	if date != nil {
		q = q.Where("date = ?", *date)
	}
	var appts []schema.Appointment
	if err := q.Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("find appointments by client: %w", err)
	}
	return appts, nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*schema.Appointment, error) {
	var appt schema.Appointment
	err := r.db.WithContext(ctx).First(&appt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return &appt, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, appt *schema.Appointment) error {
	if err := r.db.WithContext(ctx).Save(appt).Error; err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&schema.Appointment{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}
