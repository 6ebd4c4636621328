package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/SONDER730/competition-platform/internal/models"
)

// CompetitionRepository manages persistence for the competition catalogue.
type CompetitionRepository struct {
	db *sqlx.DB
}

// NewCompetitionRepository constructs a CompetitionRepository.
func NewCompetitionRepository(db *sqlx.DB) *CompetitionRepository {
	return &CompetitionRepository{db: db}
}

const competitionColumns = "id, name, link, type, reg_time_start, reg_time_end, comp_time_start, comp_time_end, description, status, created_at, updated_at"

// List returns competitions matching filters along with the total count.
func (r *CompetitionRepository) List(ctx context.Context, filter models.CompetitionFilter) ([]models.Competition, int, error) {
	base := "FROM competitions WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY id DESC LIMIT %d OFFSET %d", competitionColumns, base, size, offset)
	var competitions []models.Competition
	if err := r.db.SelectContext(ctx, &competitions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list competitions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count competitions: %w", err)
	}

	return competitions, total, nil
}

// Search returns compact id+name references whose names contain the query.
func (r *CompetitionRepository) Search(ctx context.Context, query string) ([]models.CompetitionRef, error) {
	const q = `SELECT id, name FROM competitions WHERE LOWER(name) LIKE $1 ORDER BY id LIMIT 50`
	var refs []models.CompetitionRef
	if err := r.db.SelectContext(ctx, &refs, q, "%"+strings.ToLower(query)+"%"); err != nil {
		return nil, fmt.Errorf("search competitions: %w", err)
	}
	return refs, nil
}

// FindByID fetches a competition by id.
func (r *CompetitionRepository) FindByID(ctx context.Context, id int64) (*models.Competition, error) {
	query := fmt.Sprintf("SELECT %s FROM competitions WHERE id = $1", competitionColumns)
	var competition models.Competition
	if err := r.db.GetContext(ctx, &competition, query, id); err != nil {
		return nil, err
	}
	return &competition, nil
}

// Create inserts a new competition and assigns its generated id.
func (r *CompetitionRepository) Create(ctx context.Context, competition *models.Competition) error {
	now := time.Now().UTC()
	competition.CreatedAt = now
	competition.UpdatedAt = now

	const query = `INSERT INTO competitions (name, link, type, reg_time_start, reg_time_end, comp_time_start, comp_time_end, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		competition.Name,
		competition.Link,
		competition.Type,
		competition.RegTimeStart,
		competition.RegTimeEnd,
		competition.CompTimeStart,
		competition.CompTimeEnd,
		competition.Description,
		competition.Status,
		competition.CreatedAt,
		competition.UpdatedAt,
	).Scan(&competition.ID); err != nil {
		return fmt.Errorf("create competition: %w", err)
	}
	return nil
}

// Update modifies an existing competition record.
func (r *CompetitionRepository) Update(ctx context.Context, competition *models.Competition) error {
	competition.UpdatedAt = time.Now().UTC()
	const query = `UPDATE competitions SET name = :name, link = :link, type = :type, reg_time_start = :reg_time_start, reg_time_end = :reg_time_end, comp_time_start = :comp_time_start, comp_time_end = :comp_time_end, description = :description, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, competition); err != nil {
		return fmt.Errorf("update competition: %w", err)
	}
	return nil
}

// Delete removes a competition; applications cascade at the database level.
func (r *CompetitionRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM competitions WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete competition: %w", err)
	}
	return nil
}
