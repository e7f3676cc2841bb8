package admin

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/medtrack/internal/server/models"
	"github.com/dmitrijs2005/medtrack/internal/server/services"
)

// AccountCreator is the part of services.UserService used by UserAdd.
type AccountCreator interface {
	CreateAccount(ctx context.Context, req services.SignupRequest) (*services.AuthResult, error)
}

// UserAdd creates an account with any role, typically a doctor, pharmacist
// or admin that should not come from the public signup form. Fields left
// empty in req are prompted for on w and read from reader.
func UserAdd(ctx context.Context, svc AccountCreator, req services.SignupRequest, reader *bufio.Reader, w io.Writer) (*models.UserView, error) {
	prompts := []struct {
		field  *string
		prompt string
	}{
		{&req.Name, "Full name"},
		{&req.Email, "Email"},
		{&req.Phone, "Phone"},
		{&req.Aadhaar, "Aadhaar number"},
		{&req.Role, "Role (patient, doctor, pharmacist, admin)"},
	}

	for _, p := range prompts {
		if *p.field != "" {
			continue
		}
		v, err := GetSimpleText(reader, p.prompt, w)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p.prompt, err)
		}
		*p.field = v
	}

	if req.Password == "" {
		pw, err := GetPassword(reader, w)
		if err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		req.Password = pw
	}

	res, err := svc.CreateAccount(ctx, req)
	if err != nil {
		return nil, err
	}

	return &res.User, nil
}
