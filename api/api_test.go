package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"toolbox/web-api/config"
	"toolbox/web-api/db"
	"toolbox/web-api/middleware"
	"toolbox/web-api/model"
	"toolbox/web-api/security"
	"toolbox/web-api/service"
	"toolbox/web-api/util"

	"github.com/gin-gonic/gin"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

type fakeSynth struct {
	err error
}

func (f *fakeSynth) Synthesize(context.Context, string, service.VoiceConfig) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("fake-mp3"), nil
}

type fakeTranscoder struct{}

func (fakeTranscoder) ToWAV(_ context.Context, src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

type fakeRecognizer struct {
	text string
	err  error
}

func (f *fakeRecognizer) Recognize(context.Context, string) (string, error) {
	return f.text, f.err
}

type fakeOCRRunner struct {
	out string
	err error
}

func (f *fakeOCRRunner) Run(context.Context, string) (string, error) {
	return f.out, f.err
}

// newTestAPI wires the handler set against a throwaway sqlite database
// and stub collaborators. Rate limiting and the background sweeper stay
// out so tests are deterministic.
func newTestAPI(t *testing.T) *API {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.JWTSecret = "test-secret"
	cfg.DB.Driver = "sqlite"
	cfg.DB.DSN = filepath.Join(t.TempDir(), "test.db")
	cfg.Mail.Enabled = false
	cfg.OTP.Validity = 10 * time.Minute
	cfg.Paths.Uploads = t.TempDir()
	cfg.Paths.Audio = t.TempDir()
	cfg.TTS.KeepCount = 20
	cfg.TTS.MaxChars = 5000
	cfg.MaxUploadSize = 16 << 20

	conn, err := db.New(cfg)
	require.NoError(t, err)

	a := &API{
		Cfg:   cfg,
		DB:    conn,
		Argon: security.New(),
	}

	mailer := service.NewMailer(cfg)
	a.OTP = service.NewOTPService(cfg, conn, mailer)
	a.TTS = service.NewTTSService(cfg, &fakeSynth{})
	a.STT = service.NewSTTService(cfg, fakeTranscoder{}, &fakeRecognizer{text: "hello world"})
	a.OCR = service.NewOCRService(cfg, &fakeOCRRunner{out: "scanned text"})

	router := gin.New()
	router.Use(middleware.NewRequestIDMiddleware())
	a.Router = router

	auth := middleware.NewAuthMiddleware(cfg, conn)

	users := router.Group("/api/users")
	{
		users.GET("", auth, a.UserFetch)
		users.POST("", a.UserRegister)
		users.PATCH("", auth, a.UserUpdate)
		users.POST("/login", a.UserLogin)
		users.POST("/logout", a.UserLogout)
		users.POST("/verify-email", a.UserVerifyEmail)
		users.POST("/resend-otp", a.OTPResend)
		users.POST("/forgot-password", a.PasswordForgot)
		users.POST("/resend-reset-otp", a.PasswordResetResend)
		users.POST("/reset-password", a.PasswordReset)
	}

	tools := router.Group("/api/tools", auth)
	{
		tools.POST("/summarize", a.ToolSummarize)
		tools.GET("/tts/voices", a.TTSVoices)
		tools.POST("/tts", a.ToolTTS)
		tools.GET("/tts/audio/:name", a.TTSAudioServe)
		tools.POST("/stt", a.ToolSTT)
		tools.POST("/ocr", a.ToolOCR)
	}

	return a
}

func doJSON(a *API, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func doForm(a *API, method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func doUpload(a *API, path, field, filename, contentType string, data []byte, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)

	part, _ := mw.CreatePart(hdr)
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name && ck.MaxAge >= 0 {
			return ck
		}
	}
	return nil
}

func createUser(t *testing.T, a *API, email, password string, verified bool) *model.User {
	t.Helper()

	hash, err := a.Argon.GenerateFromPassword(password)
	require.NoError(t, err)

	u := &model.User{
		ID:           util.RandStr(16),
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleFree,
		Verified:     &verified,
	}
	require.NoError(t, a.DB.Create(u).Error)
	return u
}

func authCookieFor(t *testing.T, a *API, userID string) *http.Cookie {
	t.Helper()

	token, err := security.MakeAuthToken(userID, a.Cfg.JWTSecret, time.Hour)
	require.NoError(t, err)

	return &http.Cookie{Name: "auth_token", Value: token}
}

func latestCode(t *testing.T, a *API, email, purpose string) string {
	t.Helper()

	var rec model.OTPCode
	err := a.DB.
		Where("email = ? AND purpose = ?", email, purpose).
		Order("created_at DESC").
		First(&rec).Error
	require.NoError(t, err)
	return rec.Code
}

func wavBytes(t *testing.T, samples []int) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "clip.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, 16000, 16, 1, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 16000},
		Data:           samples,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
