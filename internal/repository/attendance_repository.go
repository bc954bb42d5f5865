package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/grace-stack/flock-api/internal/models"
)

// AttendanceRepository handles persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, member_id, service_type, service_date, service_event_id, service_name,
attendance_type, check_in_time, check_out_time, watch_duration, is_online, notes, created_by, created_at`

// Insert writes a new attendance record. The (member, service type, service
// day) uniqueness is enforced by the database: on conflict the insert is a
// no-op and sql.ErrNoRows comes back from the RETURNING clause, which callers
// treat as "already recorded". There is deliberately no pre-read.
func (r *AttendanceRepository) Insert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.ServiceDate = models.NormalizeServiceDate(record.ServiceDate)
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`INSERT INTO attendance_records (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (member_id, service_type, service_date) DO NOTHING
RETURNING %s`, attendanceColumns, attendanceColumns)

	var stored models.AttendanceRecord
	err := r.db.GetContext(ctx, &stored, query,
		record.ID,
		record.MemberID,
		record.ServiceType,
		record.ServiceDate,
		record.ServiceEventID,
		record.ServiceName,
		record.AttendanceType,
		record.CheckInTime,
		record.CheckOutTime,
		record.WatchDuration,
		record.IsOnline,
		record.Notes,
		record.CreatedBy,
		record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// List returns attendance rows with member metadata matching the filter.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecordDetail, int, error) {
	base := `FROM attendance_records ar
JOIN members m ON m.id = ar.member_id`
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.MemberID != "" {
		where = append(where, fmt.Sprintf("ar.member_id = $%d", len(args)+1))
		args = append(args, filter.MemberID)
	}
	if filter.ServiceType != nil && filter.ServiceType.Valid() {
		where = append(where, fmt.Sprintf("ar.service_type = $%d", len(args)+1))
		args = append(args, *filter.ServiceType)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("ar.service_date >= $%d", len(args)+1))
		args = append(args, models.NormalizeServiceDate(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("ar.service_date <= $%d", len(args)+1))
		args = append(args, models.NormalizeServiceDate(*filter.DateTo))
	}
	whereClause := strings.Join(where, " AND ")

	allowedSort := map[string]string{
		"service_date":  "ar.service_date",
		"check_in_time": "ar.check_in_time",
		"created_at":    "ar.created_at",
	}
	sortColumn, ok := allowedSort[filter.SortBy]
	if !ok {
		sortColumn = "ar.service_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT ar.id, ar.member_id, ar.service_type, ar.service_date, ar.service_event_id,
        ar.service_name, ar.attendance_type, ar.check_in_time, ar.check_out_time, ar.watch_duration,
        ar.is_online, ar.notes, ar.created_by, ar.created_at,
        m.full_name AS member_name, m.email AS member_email
        %s WHERE %s
        ORDER BY %s %s
        LIMIT %d OFFSET %d`, base, whereClause, sortColumn, order, size, offset)

	var rows []models.AttendanceRecordDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return rows, total, nil
}

// Stats aggregates records in [from, to], optionally scoped to one service
// type.
func (r *AttendanceRepository) Stats(ctx context.Context, from, to time.Time, serviceType *models.ServiceType) (*models.AttendanceStats, error) {
	from = models.NormalizeServiceDate(from)
	to = models.NormalizeServiceDate(to)
	where := "service_date >= $1 AND service_date <= $2"
	args := []interface{}{from, to}
	if serviceType != nil && serviceType.Valid() {
		where += " AND service_type = $3"
		args = append(args, *serviceType)
	}

	stats := &models.AttendanceStats{
		ByServiceType: map[models.ServiceType]int{},
		ByMethod:      map[models.AttendanceType]int{},
	}

	totalsQuery := fmt.Sprintf(`SELECT COUNT(*) AS total,
        COUNT(DISTINCT member_id) AS uniq,
        COUNT(*) FILTER (WHERE is_online) AS online
        FROM attendance_records WHERE %s`, where)
	totals := struct {
		Total  int `db:"total"`
		Unique int `db:"uniq"`
		Online int `db:"online"`
	}{}
	if err := r.db.GetContext(ctx, &totals, totalsQuery, args...); err != nil {
		return nil, fmt.Errorf("attendance totals: %w", err)
	}
	stats.TotalRecords = totals.Total
	stats.UniqueMembers = totals.Unique
	stats.OnlineRecords = totals.Online

	typeQuery := fmt.Sprintf(`SELECT service_type, COUNT(*) AS cnt
        FROM attendance_records WHERE %s GROUP BY service_type`, where)
	typeRows := []struct {
		ServiceType models.ServiceType `db:"service_type"`
		Count       int                `db:"cnt"`
	}{}
	if err := r.db.SelectContext(ctx, &typeRows, typeQuery, args...); err != nil {
		return nil, fmt.Errorf("attendance by service type: %w", err)
	}
	for _, row := range typeRows {
		stats.ByServiceType[row.ServiceType] = row.Count
	}

	methodQuery := fmt.Sprintf(`SELECT attendance_type, COUNT(*) AS cnt
        FROM attendance_records WHERE %s GROUP BY attendance_type`, where)
	methodRows := []struct {
		AttendanceType models.AttendanceType `db:"attendance_type"`
		Count          int                   `db:"cnt"`
	}{}
	if err := r.db.SelectContext(ctx, &methodRows, methodQuery, args...); err != nil {
		return nil, fmt.Errorf("attendance by method: %w", err)
	}
	for _, row := range methodRows {
		stats.ByMethod[row.AttendanceType] = row.Count
	}

	dateQuery := fmt.Sprintf(`SELECT service_date, COUNT(*) AS cnt
        FROM attendance_records WHERE %s GROUP BY service_date ORDER BY service_date`, where)
	if err := r.db.SelectContext(ctx, &stats.ByDate, dateQuery, args...); err != nil {
		return nil, fmt.Errorf("attendance by date: %w", err)
	}

	return stats, nil
}

// TuplesInRange returns the (member, service type, service day) identities of
// all records in the window, for streak computation against the service
// calendar.
func (r *AttendanceRepository) TuplesInRange(ctx context.Context, from, to time.Time) ([]models.AttendanceTuple, error) {
	query := `SELECT member_id, service_type, service_date
FROM attendance_records
WHERE service_date >= $1 AND service_date <= $2`
	var rows []models.AttendanceTuple
	if err := r.db.SelectContext(ctx, &rows, query, models.NormalizeServiceDate(from), models.NormalizeServiceDate(to)); err != nil {
		return nil, fmt.Errorf("attendance tuples: %w", err)
	}
	return rows, nil
}
