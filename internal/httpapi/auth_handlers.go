package httpapi

import (
	"net/http"

	"printhub.org/internal/auth"
	"printhub.org/internal/obs"
)

type registerAdminRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type registerClientRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

type createClerkRequest struct {
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Password    string   `json:"password"`
	Location    string   `json:"location"`
	Permissions []string `json:"permissions"`
}

func (a *API) handleAdminRegister(w http.ResponseWriter, r *http.Request) {
	var req registerAdminRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	admin, token, err := a.auth.RegisterAdmin(r.Context(), auth.RegisterAdminInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Location: req.Location,
	})
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = obs.LogEvent(r.Context(), "auth.admin.registered", map[string]any{
		"admin_id": admin.ID,
	})
	writeData(w, http.StatusCreated, map[string]any{
		"user":  admin,
		"token": token,
	})
}

func (a *API) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	admin, token, err := a.auth.LoginAdmin(r.Context(), req.Email, req.Password)
	if err == nil {
		writeData(w, http.StatusOK, map[string]any{
			"user":  admin,
			"token": token,
		})
		return
	}
	// an admin login may actually be a clerk signing in at the same form
	clerk, clerkToken, clerkErr := a.auth.LoginClerk(r.Context(), req.Email, req.Password)
	if clerkErr != nil {
		handleAuthError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"user":                  clerk,
		"token":                 clerkToken,
		"is_temporary_password": clerk.IsTemporaryPassword,
	})
}

func (a *API) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.auth.ChangePassword(r.Context(), p, req.CurrentPassword, req.NewPassword); err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "password updated")
}

func (a *API) handleClientRegister(w http.ResponseWriter, r *http.Request) {
	var req registerClientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	client, token, err := a.auth.RegisterClient(r.Context(), auth.RegisterClientInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{
		"user":  client,
		"token": token,
	})
}

func (a *API) handleClientLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	client, token, err := a.auth.LoginClient(r.Context(), req.Email, req.Password)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"user":  client,
		"token": token,
	})
}

func (a *API) handleCreateClerk(w http.ResponseWriter, r *http.Request) {
	p, ok := a.requireKind(w, r, auth.KindAdmin)
	if !ok {
		return
	}
	if _, ok := a.requirePermission(w, r, auth.PermManageUsers); !ok {
		return
	}
	var req createClerkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	perms := make([]auth.Permission, 0, len(req.Permissions))
	for _, raw := range req.Permissions {
		perms = append(perms, auth.Permission(raw))
	}
	clerk, err := a.auth.CreateClerk(r.Context(), p.ID, auth.CreateClerkInput{
		Email:       req.Email,
		Name:        req.Name,
		Password:    req.Password,
		Location:    req.Location,
		Permissions: perms,
	})
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = obs.LogEvent(r.Context(), "auth.clerk.created", map[string]any{
		"clerk_id": clerk.ID,
	})
	writeData(w, http.StatusCreated, clerk)
}

func (a *API) handleListClerks(w http.ResponseWriter, r *http.Request) {
	p, ok := a.requireKind(w, r, auth.KindAdmin, auth.KindClerk)
	if !ok {
		return
	}
	filter := p.TenantFilter()
	clerks, err := a.auth.ListClerks(r.Context(), filter.AdminID)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, clerks)
}
