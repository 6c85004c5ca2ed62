package patient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) CreatePatient(ctx context.Context, req *model.PatientRequest) (*model.Patient, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patient), args.Error(1)
}

func (m *mockService) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patient), args.Error(1)
}

func (m *mockService) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.PatientRequest) (*model.Patient, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patient), args.Error(1)
}

func (m *mockService) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockService) ListPatients(ctx context.Context, filters *model.PatientFilters, page pagination.Params) ([]*model.Patient, int, error) {
	args := m.Called(ctx, filters, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*model.Patient), args.Int(1), args.Error(2)
}

func setupRouter(svc Service, role model.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextRole, string(role))
		c.Next()
	})
	h := NewHandler(handler.NewBaseHandler(validator.New(), 100), svc)
	h.RegisterRoutes(r.Group("/patients"))
	return r
}

type envelope struct {
	Success    bool             `json:"success"`
	Data       json.RawMessage  `json:"data"`
	Message    string           `json:"message"`
	Fields     []string         `json:"fields"`
	Pagination *pagination.Meta `json:"pagination"`
}

func perform(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestCreatePatientMissingFields(t *testing.T) {
	svc := new(mockService)
	r := setupRouter(svc, model.RoleReceptionist)

	w, env := perform(t, r, http.MethodPost, "/patients", map[string]string{
		"date_of_birth": "1990-05-01",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.ElementsMatch(t, []string{"first_name", "last_name"}, env.Fields)
	svc.AssertNotCalled(t, "CreatePatient", mock.Anything, mock.Anything)
}

func TestCreatePatientInvalidDate(t *testing.T) {
	svc := new(mockService)
	r := setupRouter(svc, model.RoleDoctor)

	w, env := perform(t, r, http.MethodPost, "/patients", map[string]string{
		"first_name":    "Jane",
		"last_name":     "Doe",
		"date_of_birth": "01/05/1990",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Message, "date_of_birth")
}

func TestCreatePatient(t *testing.T) {
	svc := new(mockService)
	r := setupRouter(svc, model.RoleReceptionist)

	created := &model.Patient{FirstName: "Jane", LastName: "Doe"}
	created.ID = uuid.New()
	svc.On("CreatePatient", mock.Anything, mock.MatchedBy(func(req *model.PatientRequest) bool {
		return req.FirstName == "Jane" && req.DateOfBirth == "1990-05-01"
	})).Return(created, nil)

	w, env := perform(t, r, http.MethodPost, "/patients", map[string]string{
		"first_name":    "Jane",
		"last_name":     "Doe",
		"date_of_birth": "1990-05-01",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), created.ID.String())
	svc.AssertExpectations(t)
}

func TestGetPatient(t *testing.T) {
	svc := new(mockService)
	r := setupRouter(svc, model.RoleNurse)

	missing := uuid.New()
	svc.On("GetPatient", mock.Anything, missing).Return(nil, apperrors.NewNotFound("patient", nil))

	w, env := perform(t, r, http.MethodGet, "/patients/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "patient not found", env.Message)

	w, _ = perform(t, r, http.MethodGet, "/patients/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPatients(t *testing.T) {
	svc := new(mockService)
	r := setupRouter(svc, model.RoleAdmin)

	page := pagination.Params{Page: 2, Limit: 10, Offset: 10}
	svc.On("ListPatients", mock.Anything, &model.PatientFilters{Query: "smith"}, page).
		Return([]*model.Patient{{FirstName: "Ann"}}, 11, nil)

	w, env := perform(t, r, http.MethodGet, "/patients?q=smith&page=2&limit=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 11, env.Pagination.Total)
	assert.Equal(t, 2, env.Pagination.TotalPages)
	svc.AssertExpectations(t)
}

func TestListPatientsRejectsBadPage(t *testing.T) {
	svc := new(mockService)
	r := setupRouter(svc, model.RoleAdmin)

	for _, query := range []string{"?page=0", "?limit=abc", "?limit=500"} {
		w, _ := perform(t, r, http.MethodGet, "/patients"+query, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
	svc.AssertNotCalled(t, "ListPatients", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeletePatientRequiresAdmin(t *testing.T) {
	svc := new(mockService)
	id := uuid.New()

	w, _ := perform(t, setupRouter(svc, model.RoleReceptionist), http.MethodDelete, "/patients/"+id.String(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertNotCalled(t, "DeletePatient", mock.Anything, mock.Anything)

	svc.On("DeletePatient", mock.Anything, id).Return(nil)
	w, _ = perform(t, setupRouter(svc, model.RoleAdmin), http.MethodDelete, "/patients/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
