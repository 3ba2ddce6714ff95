package httpapi

import "github.com/go-playground/validator/v10"

// The shape checks run as an explicit ordered list of predicates before the
// handler body: each check validates one field and contributes at most one
// FieldError. Business-rule failures (duplicate user, bad credentials) are
// reported separately with a 400, never mixed into this list.

var validate = validator.New()

type fieldCheck struct {
	param string
	tag   string
	msg   string
	value string
}

func runChecks(checks []fieldCheck) []FieldError {
	var errs []FieldError
	for _, c := range checks {
		if err := validate.Var(c.value, c.tag); err != nil {
			errs = append(errs, FieldError{Msg: c.msg, Param: c.param})
		}
	}
	return errs
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *registerRequest) checks() []fieldCheck {
	return []fieldCheck{
		{param: "name", tag: "required", msg: "Please enter your name", value: r.Name},
		{param: "email", tag: "required,email", msg: "Please enter a valid email", value: r.Email},
		{param: "password", tag: "min=6", msg: "Please enter a password with 6 or more characters", value: r.Password},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginRequest) checks() []fieldCheck {
	return []fieldCheck{
		{param: "email", tag: "required,email", msg: "Please enter a valid email", value: r.Email},
		{param: "password", tag: "required", msg: "Please enter your password", value: r.Password},
	}
}

type createPostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (r *createPostRequest) checks() []fieldCheck {
	return []fieldCheck{
		{param: "title", tag: "required", msg: "Please enter a title", value: r.Title},
		{param: "body", tag: "required", msg: "Please enter a body", value: r.Body},
	}
}
