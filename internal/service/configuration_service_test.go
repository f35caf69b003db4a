package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escuela-gastro/procurement-api/internal/dto"
	"github.com/escuela-gastro/procurement-api/internal/models"
	appErrors "github.com/escuela-gastro/procurement-api/pkg/errors"
)

type configurationRepoStub struct {
	items map[string]models.Configuration
	err   error
}

func (s *configurationRepoStub) ListByKeys(ctx context.Context, keys []string) ([]models.Configuration, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := []models.Configuration{}
	for _, key := range keys {
		if cfg, ok := s.items[key]; ok {
			result = append(result, cfg)
		}
	}
	return result, nil
}

func (s *configurationRepoStub) Get(ctx context.Context, key string) (*models.Configuration, error) {
	if s.err != nil {
		return nil, s.err
	}
	if cfg, ok := s.items[key]; ok {
		return &cfg, nil
	}
	return nil, sql.ErrNoRows
}

func (s *configurationRepoStub) Upsert(ctx context.Context, cfg *models.Configuration) error {
	if s.err != nil {
		return s.err
	}
	if s.items == nil {
		s.items = make(map[string]models.Configuration)
	}
	s.items[cfg.Key] = *cfg
	return nil
}

func (s *configurationRepoStub) BulkUpsert(ctx context.Context, cfgs []models.Configuration) error {
	if s.err != nil {
		return s.err
	}
	if s.items == nil {
		s.items = make(map[string]models.Configuration)
	}
	for _, cfg := range cfgs {
		s.items[cfg.Key] = cfg
	}
	return nil
}

type auditLoggerStub struct {
	logs []*models.AuditLog
}

func (a *auditLoggerStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func TestConfigurationServiceUpdateBoolean(t *testing.T) {
	repo := &configurationRepoStub{}
	service := NewConfigurationService(repo, &auditLoggerStub{}, validator.New(), nil, ConfigurationServiceConfig{})
	item, err := service.Update(context.Background(), "enable_export_ui", "true", &models.JWTClaims{UserID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "true", item.Value)
	assert.Equal(t, "BOOLEAN", item.Type)
}

func TestConfigurationServiceUpdateInvalidKey(t *testing.T) {
	service := NewConfigurationService(&configurationRepoStub{}, &auditLoggerStub{}, validator.New(), nil, ConfigurationServiceConfig{})
	_, err := service.Update(context.Background(), "unknown_key", "abc", &models.JWTClaims{UserID: "admin"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestConfigurationServiceUpdateValidatesWeekRange(t *testing.T) {
	service := NewConfigurationService(&configurationRepoStub{}, &auditLoggerStub{}, validator.New(), nil, ConfigurationServiceConfig{})
	for _, value := range []string{"0", "19", "abc", ""} {
		_, err := service.Update(context.Background(), "current_week_number", value, &models.JWTClaims{UserID: "admin"})
		require.Error(t, err, "value %q should be rejected", value)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}

	item, err := service.Update(context.Background(), "current_week_number", "18", &models.JWTClaims{UserID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "18", item.Value)
}

func TestConfigurationServiceBulkUpdateRollbackOnValidation(t *testing.T) {
	repo := &configurationRepoStub{}
	service := NewConfigurationService(repo, &auditLoggerStub{}, validator.New(), nil, ConfigurationServiceConfig{})
	req := dto.BulkUpdateConfigurationRequest{
		Items: []dto.UpdateConfigurationRequest{
			{Key: "enable_export_ui", Value: "true"},
			{Key: "unknown", Value: "value"},
		},
	}
	_, err := service.BulkUpdate(context.Background(), req, &models.JWTClaims{UserID: "admin"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.items, 0)
}

func TestConfigurationServiceListFiltersKeys(t *testing.T) {
	repo := &configurationRepoStub{
		items: map[string]models.Configuration{
			"enable_export_ui": {Key: "enable_export_ui", Value: "false", Type: models.ConfigurationTypeBoolean},
			"other_key":        {Key: "other_key", Value: "secret", Type: models.ConfigurationTypeString},
		},
	}
	service := NewConfigurationService(repo, &auditLoggerStub{}, validator.New(), nil, ConfigurationServiceConfig{})
	items, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, len(allowedConfigurationKeys))
	found := false
	for _, item := range items {
		if item.Key == "other_key" {
			t.Fatalf("unexpected key returned: %s", item.Key)
		}
		if item.Key == "enable_export_ui" {
			found = true
			assert.Equal(t, "false", item.Value)
		}
	}
	assert.True(t, found, "expected enable_export_ui to be present")
}

func TestConfigurationServiceUpdateHandlesRepoError(t *testing.T) {
	repo := &configurationRepoStub{err: errors.New("db down")}
	service := NewConfigurationService(repo, &auditLoggerStub{}, validator.New(), nil, ConfigurationServiceConfig{})
	_, err := service.Update(context.Background(), "school_display_name", "Escuela Gastro", &models.JWTClaims{UserID: "admin"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestConfigurationServiceGetUsesDefaults(t *testing.T) {
	service := NewConfigurationService(
		&configurationRepoStub{},
		&auditLoggerStub{},
		validator.New(),
		nil,
		ConfigurationServiceConfig{
			Defaults: map[string]string{"school_display_name": "Escuela Gastro"},
		},
	)

	item, err := service.Get(context.Background(), "school_display_name")
	require.NoError(t, err)
	assert.Equal(t, "Escuela Gastro", item.Value)
}

func TestConfigurationServiceCurrentWeekFallback(t *testing.T) {
	service := NewConfigurationService(
		&configurationRepoStub{},
		&auditLoggerStub{},
		validator.New(),
		nil,
		ConfigurationServiceConfig{Defaults: map[string]string{"current_week_number": "6"}},
	)
	week, err := service.GetCurrentWeekNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, week)
}
