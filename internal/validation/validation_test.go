package validation

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/deppfellow/newsletter/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testContent struct {
	HTML string `json:"html" validate:"required"`
}

type testRequest struct {
	Email   string      `json:"email" form:"email" validate:"required,email"`
	Name    string      `json:"name" form:"name" validate:"required,max=5"`
	Content testContent `json:"content"`
}

func (r *testRequest) Validate() error {
	return Struct(r)
}

type customRequest struct {
	Name string `form:"name"`
}

func (r *customRequest) Validate() error {
	if r.Name != "ok" {
		return CustomValidationErrors{{Field: "name", Message: "must be ok"}}
	}
	return nil
}

func newContext(method, contentType, body string) echo.Context {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, contentType)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func requireHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()
	httpErr, ok := err.(*errs.HTTPError)
	require.True(t, ok, "expected *errs.HTTPError, got %T", err)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	return httpErr
}

func TestBindAndValidate_Valid(t *testing.T) {
	c := newContext(http.MethodPost, echo.MIMEApplicationJSON, `{"email":"a@b.io","name":"ann","content":{"html":"<p/>"}}`)

	var req testRequest
	require.NoError(t, BindAndValidate(c, &req))
	assert.Equal(t, "a@b.io", req.Email)
	assert.Equal(t, "<p/>", req.Content.HTML)
}

func TestBindAndValidate_FieldErrorsUseClientNames(t *testing.T) {
	c := newContext(http.MethodPost, echo.MIMEApplicationJSON, `{"email":"nope","name":"toolong"}`)

	err := BindAndValidate(c, &testRequest{})
	httpErr := requireHTTPError(t, err)

	assert.Equal(t, "Validation failed", httpErr.Message)
	assert.ElementsMatch(t, []errs.FieldError{
		{Field: "email", Error: "must be a valid email address"},
		{Field: "name", Error: "must not exceed 5 characters"},
		{Field: "content.html", Error: "is required"},
	}, httpErr.Errors)
}

func TestBindAndValidate_Form(t *testing.T) {
	form := url.Values{"email": {"a@b.io"}, "name": {"ann"}}
	c := newContext(http.MethodPost, echo.MIMEApplicationForm, form.Encode())

	err := BindAndValidate(c, &testRequest{})
	httpErr := requireHTTPError(t, err)
	assert.Equal(t, []errs.FieldError{{Field: "content.html", Error: "is required"}}, httpErr.Errors)
}

func TestBindAndValidate_MalformedJSON(t *testing.T) {
	c := newContext(http.MethodPost, echo.MIMEApplicationJSON, `{"email":`)

	err := BindAndValidate(c, &testRequest{})
	httpErr := requireHTTPError(t, err)
	assert.NotEmpty(t, httpErr.Message)
	assert.Empty(t, httpErr.Errors)
}

func TestBindAndValidate_CustomErrors(t *testing.T) {
	c := newContext(http.MethodPost, echo.MIMEApplicationForm, "name=bad")

	err := BindAndValidate(c, &customRequest{})
	httpErr := requireHTTPError(t, err)
	assert.Equal(t, []errs.FieldError{{Field: "name", Error: "must be ok"}}, httpErr.Errors)
}
