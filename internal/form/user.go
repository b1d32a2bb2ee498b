package form

import (
	"recycleadmin/internal/model"
)

type UserForm struct {
	FullName       Value `json:"fullName"`
	Email          Value `json:"email"`
	Password       Value `json:"password"`
	Points         Value `json:"points"`
	UserIDFirebase Value `json:"userIDfireBase"`
}

type userInput struct {
	FullName string `json:"fullName" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,contact"`
	Password string `json:"password" validate:"omitempty,min=6,max=72"`
	Points   int    `json:"points" validate:"gte=0"`
}

// Parse 密码非空时写入 bcrypt 哈希；requirePassword 用于新建
func (f UserForm) Parse(requirePassword bool) (model.User, error) {
	p := newParser()
	in := userInput{
		FullName: p.text(f.FullName),
		Email:    p.text(f.Email),
		Password: string(f.Password),
	}
	if !f.Points.Empty() {
		in.Points = p.int("points", f.Points)
	}
	if requirePassword && in.Password == "" {
		p.errs.add("password", "is required")
	}
	if err := check(p.errs, in); err != nil {
		return model.User{}, err
	}

	u := model.User{
		FullName:       in.FullName,
		Email:          in.Email,
		Points:         in.Points,
		UserIDFirebase: f.UserIDFirebase.String(),
	}
	if in.Password != "" {
		hash, err := HashPassword(in.Password)
		if err != nil {
			return model.User{}, err
		}
		u.PasswordHash = hash
	}
	return u, nil
}
