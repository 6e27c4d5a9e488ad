package storage

import (
	"context"
	"fmt"

	"github.com/rezervalabs/rezerva/internal/model"
	"github.com/rezervalabs/rezerva/libs/db"
)

// WorkingDayRepository stores one row per (company, weekday). Open and close
// are nullable minutes since midnight; both null means closed.
type WorkingDayRepository struct {
	pool *db.Pool
}

func NewWorkingDayRepository(pool *db.Pool) *WorkingDayRepository {
	return &WorkingDayRepository{pool: pool}
}

// Upsert replaces the hours for the weekday if a row already exists.
func (r *WorkingDayRepository) Upsert(ctx context.Context, wd *model.WorkingDay) (*model.WorkingDay, error) {
	stored := *wd
	err := r.pool.QueryRow(ctx, `
		INSERT INTO working_days (company_id, day, opening_minute, closing_minute)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id, day) DO UPDATE
		SET opening_minute = EXCLUDED.opening_minute,
			closing_minute = EXCLUDED.closing_minute
		RETURNING id
	`, wd.CompanyID, string(wd.Day), minutes(wd.OpeningTime), minutes(wd.ClosingTime)).
		Scan(&stored.ID)
	if err != nil {
		return nil, fmt.Errorf("upsert working day: %w", err)
	}
	return &stored, nil
}

func (r *WorkingDayRepository) GetWorkingDay(ctx context.Context, companyID int64, day model.Weekday) (model.WorkingDay, bool, error) {
	var (
		wd             model.WorkingDay
		openM, closeM  *int
		weekday        string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, company_id, day, opening_minute, closing_minute
		FROM working_days
		WHERE company_id = $1 AND day = $2
	`, companyID, string(day)).Scan(&wd.ID, &wd.CompanyID, &weekday, &openM, &closeM)
	if err != nil {
		if IsNotFound(err) {
			return model.WorkingDay{}, false, nil
		}
		return model.WorkingDay{}, false, fmt.Errorf("select working day: %w", err)
	}
	wd.Day = model.Weekday(weekday)
	wd.OpeningTime = clockTime(openM)
	wd.ClosingTime = clockTime(closeM)
	return wd, true, nil
}

// ListWeek returns all seven weekdays in calendar order, filling closed
// defaults for weekdays with no stored row.
func (r *WorkingDayRepository) ListWeek(ctx context.Context, companyID int64) ([]model.WorkingDay, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, day, opening_minute, closing_minute
		FROM working_days
		WHERE company_id = $1
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list working days: %w", err)
	}
	defer rows.Close()

	byDay := make(map[model.Weekday]model.WorkingDay, len(model.WeekOrder))
	for rows.Next() {
		var (
			wd            model.WorkingDay
			openM, closeM *int
			weekday       string
		)
		if err := rows.Scan(&wd.ID, &wd.CompanyID, &weekday, &openM, &closeM); err != nil {
			return nil, fmt.Errorf("scan working day: %w", err)
		}
		wd.Day = model.Weekday(weekday)
		wd.OpeningTime = clockTime(openM)
		wd.ClosingTime = clockTime(closeM)
		byDay[wd.Day] = wd
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	week := make([]model.WorkingDay, 0, len(model.WeekOrder))
	for _, day := range model.WeekOrder {
		wd, ok := byDay[day]
		if !ok {
			wd = model.WorkingDay{CompanyID: companyID, Day: day}
		}
		week = append(week, wd)
	}
	return week, nil
}

func minutes(c *model.ClockTime) *int {
	if c == nil {
		return nil
	}
	m := int(*c)
	return &m
}

func clockTime(m *int) *model.ClockTime {
	if m == nil {
		return nil
	}
	c := model.ClockTime(*m)
	return &c
}
