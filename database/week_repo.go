package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rpupo63/builders-showcase-backend/errs"
	"github.com/rpupo63/builders-showcase-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WeekRepo struct {
	db *gorm.DB
}

func NewWeekRepo(db *gorm.DB) *WeekRepo {
	return &WeekRepo{db}
}

// WeekBounds returns the window a week created at now spans: midnight of
// now's day through 23:59:59.999 six days later, in now's location.
func WeekBounds(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end = time.Date(y, m, d+6, 23, 59, 59, int(999*time.Millisecond), now.Location())
	return start, end
}

// FindCovering returns the week whose range contains t, or nil when none does.
func (r *WeekRepo) FindCovering(ctx context.Context, t time.Time) (*models.Week, error) {
	var week models.Week
	err := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", t, t).
		Order("start_date DESC").
		First(&week).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &week, nil
}

// Latest returns the highest numbered week, or nil before the first one exists.
func (r *WeekRepo) Latest(ctx context.Context) (*models.Week, error) {
	var week models.Week
	err := r.db.WithContext(ctx).Order("number DESC").First(&week).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &week, nil
}

// CurrentOrCreate returns the week covering now, creating it when missing.
// Concurrent callers converge on one row: the insert is ON CONFLICT DO NOTHING
// against the unique start date and number, and the loser re-reads.
func (r *WeekRepo) CurrentOrCreate(ctx context.Context, now time.Time) (*models.Week, error) {
	week, err := r.FindCovering(ctx, now)
	if err != nil || week != nil {
		return week, err
	}

	latest, err := r.Latest(ctx)
	if err != nil {
		return nil, err
	}

	var number int
	if latest == nil {
		// first week ever
		number = 1
	} else {
		number = latest.Number + 1
	}

	start, end := WeekBounds(now)
	week = &models.Week{
		Number:      number,
		StartDate:   start,
		EndDate:     end,
		Theme:       fmt.Sprintf("Week %d", number),
		Description: fmt.Sprintf("Projects for week %d", number),
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(week)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 1 {
		return week, nil
	}

	week, err = r.FindCovering(ctx, now)
	if err != nil {
		return nil, err
	}
	if week == nil {
		return nil, errs.NewConflictError(fmt.Sprintf("week %d was created concurrently for another range", number))
	}
	return week, nil
}
