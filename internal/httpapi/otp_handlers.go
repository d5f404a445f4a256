package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"printhub.org/internal/otp"
)

type otpRequest struct {
	Email string `json:"email"`
}

type otpVerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (a *API) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.otp.Send(r.Context(), req.Email); err != nil {
		handleOTPError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "verification code sent")
}

func (a *API) handleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.otp.Resend(r.Context(), req.Email); err != nil {
		handleOTPError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "verification code sent")
}

func (a *API) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpVerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	remaining, err := a.otp.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, otp.ErrInvalidCode) {
			writeError(w, r, http.StatusBadRequest, "invalid code",
				fmt.Sprintf("%d attempts remaining", remaining))
			return
		}
		handleOTPError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "email verified")
}

func (a *API) handleCheckVerification(w http.ResponseWriter, r *http.Request) {
	verified, err := a.otp.CheckVerified(r.Context(), r.PathValue("email"))
	if err != nil {
		handleOTPError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"verified": verified,
	})
}
