package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"campus-portal/backend/config"
	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/model"
	"campus-portal/backend/pkg/jwt"
)

func setupAuthTest() (AuthService, *testRepos) {
	repos := newTestRepos()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-for-auth-service",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 30 * 24 * time.Hour,
		},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewAuthService(cfg, repos.repo, jwtMgr, nil, zap.NewNop())
	return svc, repos
}

func seedAuthUser(repos *testRepos, password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		UserID:       "user-auth",
		Username:     "zhangsan",
		Name:         "张三",
		Role:         model.RoleStudent,
		PasswordHash: string(hash),
	}
	repos.users.users[user.UserID] = user
	return user
}

func TestAuthService_Login(t *testing.T) {
	svc, repos := setupAuthTest()
	seedAuthUser(repos, "password123")

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "zhangsan",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("Token 对不应为空")
	}
	if resp.User.Username != "zhangsan" {
		t.Errorf("期望用户 zhangsan，实际=%s", resp.User.Username)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, repos := setupAuthTest()
	seedAuthUser(repos, "password123")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "zhangsan",
		Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}

	// 用户不存在同样返回凭证错误，不泄露是否存在
	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Username: "nonexistent",
		Password: "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	svc, repos := setupAuthTest()
	seedAuthUser(repos, "password123")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "zhangsan",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("续签的 AccessToken 不应为空")
	}

	// AccessToken 不能当 RefreshToken 用
	_, err = svc.Refresh(context.Background(), &dto.RefreshRequest{RefreshToken: login.AccessToken})
	if !errors.Is(err, ErrRefreshTokenBad) {
		t.Errorf("期望 ErrRefreshTokenBad，实际: %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, repos := setupAuthTest()
	user := seedAuthUser(repos, "password123")

	err := svc.ChangePassword(context.Background(), user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "newpassword456",
	})
	if err != nil {
		t.Fatalf("ChangePassword 应成功: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newpassword456")) != nil {
		t.Error("新密码应已生效")
	}

	// 原密码错误
	err = svc.ChangePassword(context.Background(), user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "another789",
	})
	if !errors.Is(err, ErrOldPasswordWrong) {
		t.Errorf("期望 ErrOldPasswordWrong，实际: %v", err)
	}
}
