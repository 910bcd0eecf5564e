package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"envelope/config"
	"envelope/database"
	"envelope/middleware"
	"envelope/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = gormDB
	return mock, func() {
		database.DB = oldDB
		sqlDB.Close()
	}
}

func setUserIDMiddleware(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func testAuthConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		JWT:    config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
	}
}

func TestAuthHandler_Register(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := testAuthConfig()
	config.GlobalConfig = cfg
	middleware.InitJWT(cfg)
	defer func() { config.GlobalConfig = nil }()

	// 检查用户名不存在：SELECT 返回无记录
	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{}))

	// GORM Create 使用事务
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/register", NewAuthHandler(cfg).Register)

	body := `{"username":"newuser","password":"password123","email":"new@example.com"}`
	req := httptest.NewRequest("POST", "/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "注册成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Register_DuplicateUsername(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := testAuthConfig()
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "email"}).
			AddRow(1, "existing", "hash", "e@example.com"))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/register", NewAuthHandler(cfg).Register)

	body := `{"username":"existing","password":"password123"}`
	req := httptest.NewRequest("POST", "/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "用户名已存在")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Login(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := testAuthConfig()
	config.GlobalConfig = cfg
	middleware.InitJWT(cfg)
	defer func() { config.GlobalConfig = nil }()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "email"}).
			AddRow(1, "testuser", string(hashed), "t@example.com"))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/login", NewAuthHandler(cfg).Login)

	body := `{"username":"testuser","password":"password123"}`
	req := httptest.NewRequest("POST", "/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Message string `json:"message"`
		Data    struct {
			Token    string      `json:"token"`
			UserInfo models.User `json:"user_info"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "登录成功", resp.Message)
	assert.NotEmpty(t, resp.Data.Token)
	assert.Equal(t, "testuser", resp.Data.UserInfo.Username)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := testAuthConfig()
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.DefaultCost)
	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "email"}).
			AddRow(1, "testuser", string(hashed), "t@example.com"))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/login", NewAuthHandler(cfg).Login)

	body := `{"username":"testuser","password":"wrong"}`
	req := httptest.NewRequest("POST", "/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
	assert.Contains(t, w.Body.String(), "用户名或密码错误")
	require.NoError(t, mock.ExpectationsWereMet())
}
