package session

import "errors"

// Page identifies which page of the flow a session is on. The value is
// mirrored into the "page" URL query parameter by clients.
type Page string

// The six pages of the flow
const (
	PageHome           Page = "home"
	PageRegister       Page = "register"
	PageForgotPassword Page = "forgot_password"
	PageVerifyCode     Page = "verify_code"
	PageResetPassword  Page = "reset_password"
	PageApplication    Page = "application"
)

// ParsePage maps a query-parameter value to a page
func ParsePage(s string) (Page, bool) {
	switch Page(s) {
	case PageHome, PageRegister, PageForgotPassword, PageVerifyCode, PageResetPassword, PageApplication:
		return Page(s), true
	}
	return "", false
}

// Action is a user action that may move a session to another page
type Action string

// Actions of the page flow
const (
	ActionLogin              Action = "login"
	ActionOpenRegister       Action = "open_register"
	ActionOpenForgotPassword Action = "open_forgot_password"
	ActionRegistered         Action = "registered"
	ActionAnswersVerified    Action = "answers_verified"
	ActionCodeMatched        Action = "code_matched"
	ActionPasswordReset      Action = "password_reset"
	ActionSignOut            Action = "sign_out"
	ActionReturnHome         Action = "return_home"
)

// ErrInvalidTransition is returned when an action is not declared for the
// page the session is on.
var ErrInvalidTransition = errors.New("invalid page transition")

// Next returns the page reached by taking action from current. Returning to
// home is allowed from every page; all other transitions follow the flow's
// transition table. Guards (credentials valid, answers verified, code
// matched, mail delivered) are checked by the callers before they take the
// action.
func Next(current Page, action Action) (Page, error) {
	if action == ActionReturnHome {
		return PageHome, nil
	}

	switch current {
	case PageHome:
		switch action {
		case ActionLogin:
			return PageApplication, nil
		case ActionOpenRegister:
			return PageRegister, nil
		case ActionOpenForgotPassword:
			return PageForgotPassword, nil
		}
	case PageRegister:
		if action == ActionRegistered {
			// The new account must log in from home.
			return PageHome, nil
		}
	case PageForgotPassword:
		if action == ActionAnswersVerified {
			return PageVerifyCode, nil
		}
	case PageVerifyCode:
		if action == ActionCodeMatched {
			return PageResetPassword, nil
		}
	case PageResetPassword:
		if action == ActionPasswordReset {
			return PageHome, nil
		}
	case PageApplication:
		if action == ActionSignOut {
			return PageHome, nil
		}
	}

	return current, ErrInvalidTransition
}
