package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/skyhigh/airline-checkin/internal/logger"
	"github.com/skyhigh/airline-checkin/internal/model"
	"github.com/skyhigh/airline-checkin/internal/repository"
	"github.com/skyhigh/airline-checkin/internal/utils"
)

// RefreshTokenStore persists hashed refresh tokens.
type RefreshTokenStore interface {
	Create(ctx context.Context, t *model.RefreshToken) error
	GetByHash(ctx context.Context, hash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string) error
}

// BookingSummary is one of the passenger's flights as returned on login.
type BookingSummary struct {
	BookingID        string      `json:"booking_id"`
	BookingReference string      `json:"booking_reference"`
	Flight           *FlightInfo `json:"flight"`
}

// AuthView is the login/refresh response payload.
type AuthView struct {
	AccessToken          string           `json:"access_token"`
	AccessTokenExpiresAt time.Time        `json:"access_token_expires_at"`
	RefreshToken         string           `json:"refresh_token"`
	Passenger            *PassengerInfo   `json:"passenger,omitempty"`
	Bookings             []BookingSummary `json:"bookings,omitempty"`
}

// AuthService authenticates passengers. There is no password: identity
// is the booking reference plus the matching last name and email, the
// same proof an airline desk would ask for.
type AuthService struct {
	bookings   BookingStore
	passengers PassengerStore
	flights    FlightStore
	tokens     RefreshTokenStore

	jwtSecret     string
	accessTTLMin  int
	refreshTTLDay int
	opensHours    int
	closesHours   int

	now func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	bookings BookingStore,
	passengers PassengerStore,
	flights FlightStore,
	tokens RefreshTokenStore,
	jwtSecret string,
	accessTTLMin, refreshTTLDay int,
	opensHours, closesHours int,
) *AuthService {
	return &AuthService{
		bookings:      bookings,
		passengers:    passengers,
		flights:       flights,
		tokens:        tokens,
		jwtSecret:     jwtSecret,
		accessTTLMin:  accessTTLMin,
		refreshTTLDay: refreshTTLDay,
		opensHours:    opensHours,
		closesHours:   closesHours,
		now:           time.Now,
	}
}

// Login verifies the booking details and issues a token pair plus the
// passenger's flights. Lookup failures are deliberately reported as one
// generic credential error.
func (s *AuthService) Login(ctx context.Context, reference, lastName, email string) (*AuthView, *Error) {
	if reference == "" || lastName == "" || email == "" {
		return nil, ErrValidation("Booking reference, last name and email are required")
	}

	booking, err := s.bookings.GetByReferenceAndDetails(ctx, reference, lastName, email)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, ErrInvalidCredentials()
		}
		logger.Error("login booking lookup failed", zap.Error(err))
		return nil, ErrInternal()
	}
	if booking.Status == model.BookingCancelled {
		return nil, ErrBookingNotActive()
	}

	passenger, err := s.passengers.GetByID(ctx, booking.PassengerID)
	if err != nil {
		logger.Error("login passenger lookup failed", zap.String("passenger_id", booking.PassengerID), zap.Error(err))
		return nil, ErrInternal()
	}

	view, serr := s.issueTokens(ctx, passenger.ID)
	if serr != nil {
		return nil, serr
	}
	view.Passenger = &PassengerInfo{
		ID:        passenger.ID,
		FirstName: passenger.FirstName,
		LastName:  passenger.LastName,
		Email:     passenger.Email,
	}
	view.Bookings = s.bookingSummaries(ctx, passenger.ID)

	logger.Info("passenger logged in",
		zap.String("passenger_id", passenger.ID),
		zap.String("booking_reference", booking.BookingReference))
	return view, nil
}

// Refresh rotates the refresh token and mints a new access token.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*AuthView, *Error) {
	if rawRefresh == "" {
		return nil, ErrValidation("Refresh token is required")
	}

	stored, err := s.tokens.GetByHash(ctx, utils.HashRefreshRaw(rawRefresh))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return nil, ErrInvalidCredentials()
		}
		logger.Error("refresh token lookup failed", zap.Error(err))
		return nil, ErrInternal()
	}
	if !stored.IsUsable(s.now()) {
		return nil, ErrInvalidCredentials()
	}
	if err := s.tokens.Revoke(ctx, stored.ID); err != nil {
		logger.Error("refresh token revoke failed", zap.String("token_id", stored.ID), zap.Error(err))
		return nil, ErrInternal()
	}
	return s.issueTokens(ctx, stored.PassengerID)
}

func (s *AuthService) issueTokens(ctx context.Context, passengerID string) (*AuthView, *Error) {
	access, err := utils.NewAccessToken(s.jwtSecret, passengerID, s.accessTTLMin)
	if err != nil {
		logger.Error("access token signing failed", zap.Error(err))
		return nil, ErrInternal()
	}
	refresh, err := utils.NewRefreshToken(s.refreshTTLDay)
	if err != nil {
		logger.Error("refresh token generation failed", zap.Error(err))
		return nil, ErrInternal()
	}
	if err := s.tokens.Create(ctx, &model.RefreshToken{
		ID:          newID(),
		PassengerID: passengerID,
		TokenHash:   utils.HashRefreshRaw(refresh.Raw),
		ExpiresAt:   refresh.Exp,
	}); err != nil {
		logger.Error("refresh token store failed", zap.Error(err))
		return nil, ErrInternal()
	}
	return &AuthView{
		AccessToken:          access.Token,
		AccessTokenExpiresAt: access.Exp,
		RefreshToken:         refresh.Raw,
	}, nil
}

func (s *AuthService) bookingSummaries(ctx context.Context, passengerID string) []BookingSummary {
	bookings, err := s.bookings.ListActiveByPassenger(ctx, passengerID)
	if err != nil {
		logger.Warn("listing bookings failed", zap.String("passenger_id", passengerID), zap.Error(err))
		return nil
	}
	now := s.now()
	out := make([]BookingSummary, 0, len(bookings))
	for _, b := range bookings {
		summary := BookingSummary{BookingID: b.ID, BookingReference: b.BookingReference}
		if flight, ferr := s.flights.GetByID(ctx, b.FlightID); ferr == nil {
			summary.Flight = flightInfoFor(flight, s.opensHours, s.closesHours, now)
		}
		out = append(out, summary)
	}
	return out
}
