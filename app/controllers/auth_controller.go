package controllers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkamalov/bazar/app/services"
	"github.com/mkamalov/bazar/pkg/auth"
	"github.com/mkamalov/bazar/pkg/bind"
	"github.com/mkamalov/bazar/pkg/response"
	"github.com/mkamalov/bazar/pkg/session"
	"github.com/mkamalov/bazar/pkg/storage"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(svc *services.AuthService) *AuthController {
	return &AuthController{auth: svc}
}

type registerContactRequest struct {
	Contact string `json:"contact" validate:"required,max=254"`
}

// RegisterContact is stage one: stage a contact and send it a code.
func (c *AuthController) RegisterContact(w http.ResponseWriter, r *http.Request) {
	var req registerContactRequest
	if !bind.JSON(w, r, &req) {
		return
	}
	sess, err := session.FromCtx(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	channel, err := c.auth.StartRegistration(sess, req.Contact)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := sess.Save(r.Context(), w); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]string{"channel": channel})
}

type verifyOTPRequest struct {
	Code string `json:"code" validate:"required,digits=6"`
}

// VerifyOTP is stage two: confirm the code.
func (c *AuthController) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if !bind.JSON(w, r, &req) {
		return
	}
	sess, err := session.FromCtx(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := c.auth.VerifyOTP(sess, req.Code); err != nil {
		fail(w, r, err)
		return
	}
	if err := sess.Save(r.Context(), w); err != nil {
		fail(w, r, err)
		return
	}
	response.Message(w, "Contact verified")
}

type completeRegistrationRequest struct {
	Username string `json:"username" validate:"required,min=3,max=40"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// CompleteRegistration is stage three: create the account.
func (c *AuthController) CompleteRegistration(w http.ResponseWriter, r *http.Request) {
	var req completeRegistrationRequest
	if !bind.JSON(w, r, &req) {
		return
	}
	sess, err := session.FromCtx(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	user, token, err := c.auth.CompleteRegistration(sess, req.Username, req.Password)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := sess.Save(r.Context(), w); err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, map[string]interface{}{"user": user, "token": token})
}

type updateProfileRequest struct {
	Bio string `json:"bio" validate:"nullable,max=1000"`
}

// UpdateProfile is the optional final stage: bio text.
func (c *AuthController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req updateProfileRequest
	if !bind.JSON(w, r, &req) {
		return
	}

	user, err := c.auth.UpdateProfile(id.UserID, req.Bio, "")
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, user)
}

// UploadAvatar accepts a multipart avatar image and stores it through
// the configured disk.
func (c *AuthController) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "The avatar file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		response.Error(w, http.StatusUnprocessableEntity, "Unsupported image type")
		return
	}

	path := fmt.Sprintf("avatars/%d-%d%s", id.UserID, time.Now().UnixNano(), ext)
	if err := storage.PutStream(path, io.LimitReader(file, 5<<20)); err != nil {
		fail(w, r, err)
		return
	}

	user, err := c.auth.UpdateProfile(id.UserID, "", path)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]interface{}{
		"user":       user,
		"avatar_url": storage.URL(path),
	})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !bind.JSON(w, r, &req) {
		return
	}

	user, token, err := c.auth.Login(req.Username, req.Password)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]interface{}{"user": user, "token": token})
}

type refreshRequest struct {
	Token string `json:"token" validate:"required"`
}

func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !bind.JSON(w, r, &req) {
		return
	}

	token, err := auth.RefreshToken(req.Token)
	if err != nil {
		response.Unauthorized(w, "Invalid or expired token")
		return
	}
	response.Success(w, map[string]string{"token": token})
}

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	user, err := c.auth.Me(id.UserID)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, user)
}

type becomeSellerRequest struct {
	ShopName    string `json:"shop_name" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"nullable,max=2000"`
}

// BecomeSeller upgrades the account with a seller profile and returns a
// token carrying the seller identity.
func (c *AuthController) BecomeSeller(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req becomeSellerRequest
	if !bind.JSON(w, r, &req) {
		return
	}

	user, token, err := c.auth.BecomeSeller(id.UserID, req.ShopName, req.Description)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, map[string]interface{}{"user": user, "token": token})
}
