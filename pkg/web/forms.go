package web

// signupForm is the body of POST /do_signup.
type signupForm struct {
	Username          string `form:"username" validate:"required,min=4,max=64"`
	PlayerName        string `form:"playername" validate:"required,min=4,max=64"`
	Password          string `form:"password" validate:"required,min=6,max=64"`
	ConfirmedPassword string `form:"confirmed_password" validate:"required"`
}

// loginForm is the body of POST /do_login.
type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// deleteForm is the body of POST /do_delete. The confirmation checkbox
// must be ticked for the deletion to proceed.
type deleteForm struct {
	Confirmation string `form:"confirmation"`
}
