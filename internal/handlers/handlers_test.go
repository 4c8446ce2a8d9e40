package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consultorio-api/internal/auth"
	"github.com/BruksfildServices01/consultorio-api/internal/db/dbtest"
	"github.com/BruksfildServices01/consultorio-api/internal/middleware"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
	"github.com/BruksfildServices01/consultorio-api/internal/timezone"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// as injects p the way AuthMiddleware would.
func as(p auth.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextPrincipal, p)
		c.Next()
	}
}

func send(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	code, _ := body["error_code"].(string)
	return code
}

var recepcion = auth.Principal{UserID: 2, Username: "recepcion", Role: models.RoleFrontDesk}

func TestSummarizePayments(t *testing.T) {
	stats := summarizePayments("2024-06-03", []models.Payment{
		{Date: "2024-06-03", Amount: 5000, Method: models.PaymentCash},
		{Date: "2024-06-03", Amount: 3000, Method: models.PaymentTransfer},
		{Date: "2024-06-03", Amount: 0, Method: models.PaymentInsurer},
		{Date: "2024-06-01", Amount: 2000, Method: models.PaymentCash},
	})

	assert.Equal(t, 3, stats.DayCount)
	assert.Equal(t, 8000.0, stats.DayTotal)
	assert.Equal(t, 5000.0, stats.DayCash)
	assert.Equal(t, 3000.0, stats.DayTransfer)
	assert.Equal(t, 1, stats.DayInsurer)
	assert.Equal(t, 10000.0, stats.MonthTotal)
	assert.Equal(t, 7000.0, stats.MonthCash)
}

func paymentRouter(gdb *gorm.DB) *gin.Engine {
	h := NewPaymentHandler(gdb, nil, timezone.Location(timezone.DefaultTimezone))
	r := gin.New()
	r.Use(as(recepcion))
	r.GET("/pagos", h.List)
	r.POST("/pagos", h.Create)
	r.DELETE("/pagos/:id", h.Delete)
	r.GET("/pagos/estadisticas", h.Stats)
	r.GET("/pagos/exportar", h.Export)
	return r
}

func TestManualPaymentRules(t *testing.T) {
	gdb := dbtest.Open(t)
	dbtest.SeedPatient(t, gdb, "40111222")
	r := paymentRouter(gdb)

	w := send(r, http.MethodPost, "/pagos", gin.H{"dni_paciente": "40111222", "monto": 5000, "tipo_pago": "obra_social"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_payment_method", errorCode(t, w))

	w = send(r, http.MethodPost, "/pagos", gin.H{"dni_paciente": "40111222", "monto": -1})
	assert.Equal(t, "invalid_amount", errorCode(t, w))

	w = send(r, http.MethodPost, "/pagos", gin.H{"dni_paciente": "30999888", "monto": 100, "tipo_pago": "efectivo"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = send(r, http.MethodPost, "/pagos", gin.H{
		"dni_paciente": "40111222", "monto": 5000, "tipo_pago": "efectivo", "fecha": "2024-06-03",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Payment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "OSDE", created.Insurer)

	w = send(r, http.MethodGet, "/pagos?fecha=2024-06-03", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"nombre":"Ana"`)

	w = send(r, http.MethodGet, "/pagos/estadisticas?fecha=2024-06-03", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats PaymentStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 5000.0, stats.DayCash)

	w = send(r, http.MethodGet, "/pagos/exportar?desde=2024-06-01&hasta=2024-06-30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "pagos_2024-06-01_2024-06-30.csv")
	assert.Contains(t, w.Body.String(), "40111222")

	w = send(r, http.MethodDelete, "/pagos/"+jsonNumber(created.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = send(r, http.MethodDelete, "/pagos/"+jsonNumber(created.ID), nil)
	assert.Equal(t, "payment_not_found", errorCode(t, w))
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestExportRejectsInvertedRange(t *testing.T) {
	r := paymentRouter(dbtest.Open(t))

	w := send(r, http.MethodGet, "/pagos/exportar?desde=2024-06-30&hasta=2024-06-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_date_range", errorCode(t, w))
}

func TestClinicalNoteCreatesPlaceholderPatient(t *testing.T) {
	gdb := dbtest.Open(t)
	doc := dbtest.SeedUser(t, gdb, "dra_gomez", models.RoleDoctor)

	h := NewClinicalNoteHandler(gdb, nil, timezone.Location(timezone.DefaultTimezone))
	r := gin.New()
	r.Use(as(auth.Principal{UserID: doc.ID, Username: doc.Username, Role: models.RoleDoctor}))
	r.POST("/historias", h.Create)
	r.GET("/historias", h.Search)
	r.GET("/historias/:dni", h.ByPatient)

	w := send(r, http.MethodPost, "/historias", gin.H{
		"dni": "30999888", "consulta_medica": "Control anual", "fecha_consulta": "2024-06-03",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var p models.Patient
	require.NoError(t, gdb.Where("dni = ?", "30999888").First(&p).Error)
	assert.True(t, p.Incomplete())

	w = send(r, http.MethodGet, "/historias/30999888", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []NoteRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "dra_gomez", list.Data[0].Doctor)
	assert.Equal(t, "2024-06-03", list.Data[0].ConsultationDate)

	w = send(r, http.MethodGet, "/historias?q=anual&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total int64 `json:"total"`
		Limit int   `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, 5, page.Limit)

	w = send(r, http.MethodPost, "/historias", gin.H{"dni": "12", "consulta_medica": "x"})
	assert.Equal(t, "invalid_dni", errorCode(t, w))
}

func patientRouter(gdb *gorm.DB) *gin.Engine {
	h := NewPatientHandler(gdb, nil, timezone.Location(timezone.DefaultTimezone))
	r := gin.New()
	r.Use(as(recepcion))
	r.GET("/pacientes", h.List)
	r.POST("/pacientes", h.Create)
	r.GET("/pacientes/:dni", h.Get)
	r.PUT("/pacientes/:dni", h.Update)
	r.DELETE("/pacientes/:dni", h.Delete)
	return r
}

func patientBody(dni string) gin.H {
	return gin.H{
		"dni":                dni,
		"nombre":             "Ana",
		"apellido":           "Pérez",
		"fecha_nacimiento":   "1990-01-15",
		"obra_social":        "OSDE",
		"numero_obra_social": "123",
		"celular":            "1155550000",
	}
}

func TestPatientCreateRejectsDuplicates(t *testing.T) {
	r := patientRouter(dbtest.Open(t))

	w := send(r, http.MethodPost, "/pacientes", patientBody("40111222"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = send(r, http.MethodPost, "/pacientes", patientBody("40111222"))
	assert.Equal(t, "dni_already_exists", errorCode(t, w))

	missing := patientBody("40111223")
	delete(missing, "celular")
	w = send(r, http.MethodPost, "/pacientes", missing)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(r, http.MethodGet, "/pacientes?q=perez", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestPatientDNIChangeCascades(t *testing.T) {
	gdb := dbtest.Open(t)
	doc := dbtest.SeedUser(t, gdb, "dra_gomez", models.RoleDoctor)
	dbtest.SeedPatient(t, gdb, "40111222")
	require.NoError(t, gdb.Create(&models.Appointment{
		DoctorID: doc.ID, Date: "2024-06-03", Time: "09:00", PatientDNI: "40111222", Status: "sin atender",
	}).Error)
	require.NoError(t, gdb.Create(&models.Payment{
		PatientDNI: "40111222", Amount: 100, Date: "2024-06-03", Method: models.PaymentCash,
	}).Error)
	require.NoError(t, gdb.Create(&models.ClinicalNote{
		PatientDNI: "40111222", DoctorID: doc.ID, Note: "nota", ConsultationDate: "2024-06-03",
	}).Error)
	r := patientRouter(gdb)

	w := send(r, http.MethodDelete, "/pacientes/40111222", nil)
	assert.Equal(t, "patient_has_appointments", errorCode(t, w))

	w = send(r, http.MethodPut, "/pacientes/40111222", patientBody("40111223"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, strings.Contains(w.Body.String(), `"dni":"40111223"`))

	for _, model := range []any{&models.Appointment{}, &models.Payment{}, &models.ClinicalNote{}} {
		var n int64
		require.NoError(t, gdb.Model(model).Where("patient_dni = ?", "40111223").Count(&n).Error)
		assert.EqualValues(t, 1, n)
	}

	w = send(r, http.MethodGet, "/pacientes/40111222", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
