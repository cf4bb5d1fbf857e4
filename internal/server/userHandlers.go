package server

import (
	"context"
	"encoding/json"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"net/http"
	"net/mail"
	db "pricewatch/internal/database"
	"pricewatch/internal/model"
	"strings"
	"time"
)

func (s Server) userRegister() http.HandlerFunc {
	type request struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	type response struct {
		Success    bool   `json:"success"`
		LoginToken string `json:"login_token"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("userRegister: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if _, err := mail.ParseAddress(req.Email); err != nil {
			s.Logger.Debugf("userRegister: Invalid email, err: %v", err)
			http.Error(w, "Invalid email", http.StatusBadRequest)
			return
		}
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.Logger.Errorf("userRegister: Error generating bcrypt from password, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		u := model.User{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: passwordHash,
		}
		if _, err = s.DB.UserInsert(r.Context(), u); err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				s.Logger.Debugf("userRegister: Duplicate email when inserting User, err: %v", err)
				http.Error(w, "Email already registered", http.StatusBadRequest)
				return
			}
			s.Logger.Errorf("userRegister: Error inserting User, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		lt, err := s.createSessionToken(req.Email)
		if err != nil {
			s.Logger.Errorf("userRegister: Error creating session token for User, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{
			Success:    true,
			LoginToken: lt,
		}, http.StatusCreated)
	}
}

func (s Server) userLogin() http.HandlerFunc {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	type response struct {
		LoginToken string `json:"login_token"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("userLogin: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		// Unknown email, password-less account, and wrong password all produce
		// the same response so the endpoint can't be used to enumerate users.
		u, err := s.DB.UserFindByEmail(r.Context(), req.Email)
		if err != nil {
			s.Logger.Debugf("userLogin: Error finding User, err: %v", err)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		if len(u.PasswordHash) == 0 {
			s.Logger.Debugf("userLogin: No password hash set for User with email: %s", u.Email)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		if err = bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)); err != nil {
			s.Logger.Debugf("userLogin: Error comparing hash and password for User with email: %s, err: %v", u.Email, err)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		lt, err := s.createSessionToken(u.Email)
		if err != nil {
			s.Logger.Errorf("userLogin: Error creating session token for User, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{LoginToken: lt}, http.StatusOK)
	}
}

// userExternalLogin exchanges an identity token from an external provider for
// a session. The token is trusted as-is and only mined for an email; unknown
// identities are provisioned on first sight.
func (s Server) userExternalLogin() http.HandlerFunc {
	type request struct {
		Token string `json:"token"`
	}
	type response struct {
		LoginToken string `json:"login_token"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("userExternalLogin: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		email, err := emailFromExternalToken(req.Token)
		if err != nil {
			s.Logger.Debugf("userExternalLogin: Error getting email from external token, err: %v", err)
			http.Error(w, "Invalid token", http.StatusBadRequest)
			return
		}

		if _, err = s.DB.UserFindByEmail(r.Context(), email); err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				s.Logger.Errorf("userExternalLogin: Error finding User with email: %s, err: %v", email, err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			u := model.User{
				Name:  email[:strings.IndexByte(email, '@')],
				Email: email,
			}
			if _, err = s.DB.UserInsert(r.Context(), u); err != nil && !errors.Is(err, db.ErrDuplicate) {
				s.Logger.Errorf("userExternalLogin: Error provisioning User with email: %s, err: %v", email, err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			s.Logger.Infof("userExternalLogin: Provisioned new User with email: %s", email)
		}

		lt, err := s.createSessionToken(email)
		if err != nil {
			s.Logger.Errorf("userExternalLogin: Error creating session token for User, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{LoginToken: lt}, http.StatusOK)
	}
}

func (s Server) userInfo() http.HandlerFunc {
	type response struct {
		Name               string `json:"name"`
		Email              string `json:"email"`
		IsPro              bool   `json:"is_pro"`
		TelegramConfigured bool   `json:"telegram_configured"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("userInfo: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{
			Name:               uc.user.Name,
			Email:              uc.user.Email,
			IsPro:              uc.user.IsPro,
			TelegramConfigured: uc.user.HasTelegramCredential(),
		}, http.StatusOK)
	}
}

func (s Server) userTelegramSave() http.HandlerFunc {
	type request struct {
		Token  string `json:"token"`
		ChatID string `json:"chat_id"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("userTelegramSave: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("userTelegramSave: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Token == "" || req.ChatID == "" {
			s.Logger.Debugf("userTelegramSave: Missing token or chat_id for User with email: %s", uc.user.Email)
			http.Error(w, "token and chat_id are required", http.StatusBadRequest)
			return
		}

		if err = s.DB.UserTelegramCredentialUpdate(r.Context(), uc.user.Email, req.Token, req.ChatID); err != nil {
			s.Logger.Errorf("userTelegramSave: Error updating Telegram credential, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) userTelegramTest() http.HandlerFunc {
	type request struct {
		Token  string `json:"token"`
		ChatID string `json:"chat_id"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("userTelegramTest: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Token == "" || req.ChatID == "" {
			http.Error(w, "token and chat_id are required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), notifySendTimeout)
		defer cancel()
		if err := s.Notifier.SendMessage(ctx, req.Token, req.ChatID, "✅ Price Tracker connected!"); err != nil {
			s.Logger.Debugf("userTelegramTest: Error sending test message to chat: %s, err: %v", req.ChatID, err)
			http.Error(w, "Failed to send test message", http.StatusBadRequest)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) createSessionToken(email string) (string, error) {
	t, err := jwt.NewBuilder().
		Subject(email).
		Issuer("pricewatch").
		IssuedAt(time.Now()).
		Expiration(time.Now().AddDate(0, 0, 90)).
		Build()
	if err != nil {
		return "", errors.Wrapf(err, "error building session token for email: %s", email)
	}
	lt, err := jwt.Sign(t, jwt.WithKey(jwa.HS256, s.AuthSecretKey))
	if err != nil {
		return "", errors.Wrapf(err, "error signing session token for email: %s", email)
	}
	return string(lt), nil
}

// emailFromExternalToken pulls an email out of an external identity token
// without verifying its signature. Demo-grade by design.
func emailFromExternalToken(token string) (string, error) {
	t, err := jwt.ParseInsecure([]byte(token))
	if err != nil {
		return "", errors.Wrap(err, "error parsing external token")
	}
	email := t.Subject()
	if claim, ok := t.Get("email"); ok {
		if s, ok := claim.(string); ok && s != "" {
			email = s
		}
	}
	if _, err = mail.ParseAddress(email); err != nil {
		return "", errors.Wrapf(err, "external token carries no valid email, subject: %s", t.Subject())
	}
	return email, nil
}
