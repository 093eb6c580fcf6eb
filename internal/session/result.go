// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

// Reason names why an operation was rejected.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonUsernameTaken       Reason = "UsernameTaken"
	ReasonInvalidCredentials  Reason = "InvalidCredentials"
	ReasonInvalidRefreshToken Reason = "InvalidRefreshToken"
	ReasonInvalidInput        Reason = "InvalidInput"
)

// AuthResult is the outcome of Register, Login and Refresh.
//
// Tokens are set only when Success is true; Reason only when it is false.
type AuthResult struct {
	Success      bool
	AccessToken  string
	RefreshToken string
	Reason       Reason
}

func rejected(reason Reason) AuthResult {
	return AuthResult{Reason: reason}
}
