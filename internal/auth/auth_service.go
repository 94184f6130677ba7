package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"time"

	autherrors "go-courier/internal/auth/errors"
	"go-courier/internal/driver"
	"go-courier/internal/events"
	"go-courier/internal/messaging/kafka"
	"go-courier/internal/shared/contextutil"
	"go-courier/internal/shared/dateutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, resp AuthResponse, err error)
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp AuthResponse, err error)
	GetMe(ctx context.Context, userID string) (*AuthResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	drivers driver.Repository
	outbox  kafka.OutboxRepository
	now     func() time.Time
	logger  *zap.Logger
}

func NewService(db *sql.DB, repo Repository, drivers driver.Repository) Service {
	return NewServiceWithOutbox(db, repo, drivers, nil)
}

func NewServiceWithOutbox(db *sql.DB, repo Repository, drivers driver.Repository, outbox kafka.OutboxRepository) Service {
	return &service{
		db:      db,
		repo:    repo,
		drivers: drivers,
		outbox:  outbox,
		now:     time.Now,
		logger:  zap.L().Named("auth.service"),
	}
}

func NewServiceWithClock(db *sql.DB, repo Repository, drivers driver.Repository, outbox kafka.OutboxRepository, now func() time.Time) Service {
	s := NewServiceWithOutbox(db, repo, drivers, outbox).(*service)
	s.now = now
	return s
}

// Register creates the user account together with its role profile in one
// tx. Admins get a fresh invite key; drivers must present an admin's key
// and start on the bike morning rate until the admin updates the profile.
func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	if req.Role != "ADMIN" && req.Role != "DRIVER" {
		return AuthResponse{}, autherrors.ErrInvalidRole
	}

	var fleetAdmin *driver.Admin
	if req.Role == "DRIVER" {
		if req.InviteKey == "" {
			return AuthResponse{}, autherrors.ErrInvalidInviteKey
		}
		admin, err := s.drivers.FindAdminByInviteKey(ctx, req.InviteKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return AuthResponse{}, autherrors.ErrInvalidInviteKey
			}
			return AuthResponse{}, err
		}
		fleetAdmin = admin
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AuthResponse{}, err
	}
	defer tx.Rollback()

	user := &User{
		ID:       uuid.New(),
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     req.Role,
	}
	if err := s.repo.WithTx(tx).Create(ctx, user); err != nil {
		return AuthResponse{}, mapCreateUserError(err)
	}

	resp := AuthResponse{
		ID:    user.ID.String(),
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}

	qdrivers := s.drivers.WithTx(tx)

	switch req.Role {
	case "ADMIN":
		admin := &driver.Admin{
			ID:        uuid.New(),
			UserID:    user.ID,
			InviteKey: driver.NewInviteKey(),
		}
		if err := qdrivers.CreateAdmin(ctx, admin); err != nil {
			return AuthResponse{}, err
		}
		resp.AdminID = admin.ID.String()
		resp.InviteKey = admin.InviteKey

	case "DRIVER":
		baseSalary, _ := driver.BaseSalaryFor(driver.VehicleBike, driver.ShiftMorning)
		d := &driver.Driver{
			ID:          uuid.New(),
			AdminID:     fleetAdmin.ID,
			UserID:      user.ID,
			Name:        req.Name,
			Phone:       req.Phone,
			VehicleType: driver.VehicleBike,
			Shift:       driver.ShiftMorning,
			BaseSalary:  baseSalary,
			JoiningDate: dateutil.DayStart(s.now()),
		}
		if err := qdrivers.CreateDriver(ctx, d); err != nil {
			return AuthResponse{}, err
		}
		resp.DriverID = d.ID.String()
		resp.Phone = d.Phone

		if s.outbox != nil {
			event := events.DriverLifecycleEvent{
				EventType:  "driver_registered",
				DriverID:   d.ID.String(),
				AdminID:    fleetAdmin.ID.String(),
				DriverName: d.Name,
				OccurredAt: s.now(),
			}
			payload, err := json.Marshal(event)
			if err != nil {
				return AuthResponse{}, err
			}
			if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
				ID:            uuid.NewString(),
				RequestID:     rid,
				AggregateType: "driver",
				AggregateID:   d.ID.String(),
				EventType:     event.EventType,
				Topic:         events.DriverLifecycleTopic,
				Payload:       payload,
				Status:        kafka.OutboxStatusPending,
			}); err != nil {
				return AuthResponse{}, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return AuthResponse{}, err
	}

	s.logger.Info("user registered",
		zap.String("request_id", rid),
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role),
	)

	return resp, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, string, AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	resp, claims, err := s.resolveProfile(ctx, user)
	if err != nil {
		return "", "", AuthResponse{}, err
	}

	accessToken, err := s.generateToken(claims, accessTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	refreshToken, err := s.generateToken(claims, refreshTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return accessToken, refreshToken, resp, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, AuthResponse, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidUserID
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrUserNotFound
	}

	resp, tokenClaims, err := s.resolveProfile(ctx, user)
	if err != nil {
		return "", "", AuthResponse{}, err
	}

	newAccess, err := s.generateToken(tokenClaims, accessTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	newRefresh, err := s.generateToken(tokenClaims, refreshTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return newAccess, newRefresh, resp, nil
}

func (s *service) GetMe(ctx context.Context, userID string) (*AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, autherrors.ErrInvalidUserID
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, autherrors.ErrUserNotFound
	}

	resp, _, err := s.resolveProfile(ctx, user)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// resolveProfile attaches the role profile to the response and builds the
// claim set carried by every token issued for this user.
func (s *service) resolveProfile(ctx context.Context, user *User) (AuthResponse, jwt.MapClaims, error) {
	resp := AuthResponse{
		ID:    user.ID.String(),
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
	}

	switch user.Role {
	case "ADMIN":
		admin, err := s.drivers.FindAdminByUser(ctx, user.ID.String())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return AuthResponse{}, nil, autherrors.ErrProfileNotFound
			}
			return AuthResponse{}, nil, err
		}
		resp.AdminID = admin.ID.String()
		resp.InviteKey = admin.InviteKey
		claims["admin_id"] = admin.ID.String()

	case "DRIVER":
		d, err := s.drivers.FindByUser(ctx, user.ID.String())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return AuthResponse{}, nil, autherrors.ErrProfileNotFound
			}
			return AuthResponse{}, nil, err
		}
		resp.DriverID = d.ID.String()
		resp.Phone = d.Phone
		claims["driver_id"] = d.ID.String()

	default:
		return AuthResponse{}, nil, autherrors.ErrInvalidRole
	}

	return resp, claims, nil
}

func (s *service) generateToken(base jwt.MapClaims, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{"exp": s.now().Add(expiry).Unix()}
	for k, v := range base {
		claims[k] = v
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func mapCreateUserError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return autherrors.ErrEmailAlreadyRegistered
	}
	return err
}
