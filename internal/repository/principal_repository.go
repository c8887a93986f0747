package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/marketplace-backend/internal/models"
)

var (
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrUnknownPrincipal  = errors.New("unknown principal model")
)

// principalTables — статическая таблица диспетчеризации: тип аккаунта -> таблица.
// Никаких строковых lookup'ов по имени коллекции в запросах.
var principalTables = map[string]string{
	models.PrincipalUser:       "users",
	models.PrincipalFreelancer: "freelancers",
	models.PrincipalInfluencer: "influencers",
	models.PrincipalAdmin:      "admins",
}

func principalTable(model string) (string, error) {
	table, ok := principalTables[model]
	if !ok {
		return "", fmt.Errorf("principal repository: %w: %s", ErrUnknownPrincipal, model)
	}
	return table, nil
}

type PrincipalRepository struct {
	db *sqlx.DB
}

func NewPrincipalRepository(db *sqlx.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

// Create создаёт принципала в таблице соответствующего типа.
func (r *PrincipalRepository) Create(ctx context.Context, model string, p *models.Principal) error {
	table, err := principalTable(model)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (email, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, is_active, created_at, updated_at
	`, table)

	row := r.db.QueryRowxContext(ctx, query, p.Email, p.Username, p.PasswordHash)
	if err := row.Scan(&p.ID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("principal repository: create %s: %w", model, err)
	}
	p.Model = model
	return nil
}

// GetByEmail возвращает принципала по email в рамках одного типа аккаунта.
func (r *PrincipalRepository) GetByEmail(ctx context.Context, model, email string) (*models.Principal, error) {
	table, err := principalTable(model)
	if err != nil {
		return nil, err
	}

	var p models.Principal
	query := fmt.Sprintf(`
		SELECT id, email, username, password_hash, is_active, created_at, updated_at
		FROM %s WHERE email = $1
	`, table)
	if err := r.db.GetContext(ctx, &p, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("principal repository: get by email: %w", err)
	}
	p.Model = model
	return &p, nil
}

// GetByID возвращает принципала по идентификатору.
func (r *PrincipalRepository) GetByID(ctx context.Context, model string, id uuid.UUID) (*models.Principal, error) {
	table, err := principalTable(model)
	if err != nil {
		return nil, err
	}

	var p models.Principal
	query := fmt.Sprintf(`
		SELECT id, email, username, password_hash, is_active, created_at, updated_at
		FROM %s WHERE id = $1
	`, table)
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("principal repository: get by id: %w", err)
	}
	p.Model = model
	return &p, nil
}

// List возвращает принципалов одного типа постранично.
func (r *PrincipalRepository) List(ctx context.Context, model string, limit, offset int) ([]models.Principal, error) {
	table, err := principalTable(model)
	if err != nil {
		return nil, err
	}

	var principals []models.Principal
	query := fmt.Sprintf(`
		SELECT id, email, username, password_hash, is_active, created_at, updated_at
		FROM %s ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, table)
	if err := r.db.SelectContext(ctx, &principals, query, limit, offset); err != nil {
		return nil, fmt.Errorf("principal repository: list %s: %w", model, err)
	}
	for i := range principals {
		principals[i].Model = model
	}
	return principals, nil
}

// SetActive блокирует или разблокирует аккаунт.
func (r *PrincipalRepository) SetActive(ctx context.Context, model string, id uuid.UUID, active bool) error {
	table, err := principalTable(model)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET is_active = $2, updated_at = NOW() WHERE id = $1`, table)
	res, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("principal repository: set active: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrPrincipalNotFound
	}
	return nil
}

// UpdateUsername обновляет имя пользователя.
func (r *PrincipalRepository) UpdateUsername(ctx context.Context, model string, id uuid.UUID, username string) error {
	table, err := principalTable(model)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET username = $2, updated_at = NOW() WHERE id = $1`, table)
	res, err := r.db.ExecContext(ctx, query, id, username)
	if err != nil {
		return fmt.Errorf("principal repository: update username: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrPrincipalNotFound
	}
	return nil
}

// UpdateFreelancerProfile обновляет описание и фото фрилансера.
func (r *PrincipalRepository) UpdateFreelancerProfile(ctx context.Context, id uuid.UUID, bio, photoKey *string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE freelancers
		SET bio = COALESCE($2, bio), photo_key = COALESCE($3, photo_key), updated_at = NOW()
		WHERE id = $1
	`, id, bio, photoKey)
	if err != nil {
		return fmt.Errorf("principal repository: update freelancer profile: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrPrincipalNotFound
	}
	return nil
}

// GetInfluencer возвращает инфлюенсера вместе с полями подписки.
func (r *PrincipalRepository) GetInfluencer(ctx context.Context, id uuid.UUID) (*models.Influencer, error) {
	var inf models.Influencer
	err := r.db.GetContext(ctx, &inf, `
		SELECT id, email, username, password_hash, subscription_plan_id, subscription_expires_at,
		       is_active, created_at, updated_at
		FROM influencers WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("principal repository: get influencer: %w", err)
	}
	return &inf, nil
}

// CreateSession сохраняет refresh-сессию принципала.
func (r *PrincipalRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (principal_id, principal_model, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	row := r.db.QueryRowxContext(ctx, query,
		session.PrincipalID, session.PrincipalModel, session.RefreshToken,
		session.UserAgent, session.IPAddress, session.ExpiresAt)
	if err := row.Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("principal repository: create session: %w", err)
	}
	return nil
}

// DeleteSession удаляет сессию по refresh токену.
func (r *PrincipalRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = $1`, refreshToken)
	if err != nil {
		return fmt.Errorf("principal repository: delete session: %w", err)
	}
	return nil
}

// ListSessions возвращает активные сессии принципала.
func (r *PrincipalRepository) ListSessions(ctx context.Context, principalID uuid.UUID, model string) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT id, principal_id, principal_model, refresh_token, user_agent, ip_address, expires_at, created_at
		FROM sessions
		WHERE principal_id = $1 AND principal_model = $2 AND expires_at > NOW()
		ORDER BY created_at DESC
	`, principalID, model)
	if err != nil {
		return nil, fmt.Errorf("principal repository: list sessions: %w", err)
	}
	return sessions, nil
}

// DeleteSessionByID удаляет конкретную сессию принципала.
func (r *PrincipalRepository) DeleteSessionByID(ctx context.Context, sessionID, principalID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1 AND principal_id = $2`, sessionID, principalID)
	if err != nil {
		return fmt.Errorf("principal repository: delete session by id: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}
