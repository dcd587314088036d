package apisdk

import (
	"context"
	"net/http"
)

// Register creates a new account. Student registrations carry a university,
// industry partner registrations set IndustryPartner and a company instead.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/register", req)
	if err != nil {
		return nil, err
	}

	var out RegisterResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}

	return &out, nil
}

// LoginRaw exchanges credentials for the raw login response. Most callers
// want Login, which wraps the result in a Session.
func (c *SDKClient) LoginRaw(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/login", body)
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

// VerifyEmail consumes a single-use verification token from the
// registration email.
func (c *SDKClient) VerifyEmail(ctx context.Context, token string) error {
	body := map[string]string{"token": token}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/verify-email", body)
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// ForgotPassword requests a password reset email. The server responds 200
// whether or not the email is registered.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/forgot-password", body)
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// ResetPassword consumes a single-use reset token and sets the new password.
func (c *SDKClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{
		"token":       token,
		"newPassword": newPassword,
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/reset-password", body)
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}
