package house

import "errors"

var (
	ErrHouseNotFound        = errors.New("house not found")
	ErrInviteCodeNotFound   = errors.New("invite code not found")
	ErrAlreadyMember        = errors.New("user is already a member of this house")
	ErrMemberNotFound       = errors.New("user is not a member of this house")
	ErrNotMember            = errors.New("user does not belong to this house")
	ErrNotOwner             = errors.New("user does not have owner permission for this house")
	ErrLastMember           = errors.New("house must always have at least one member")
	ErrLastOwner            = errors.New("house must always have at least one owner")
	ErrInactiveUser         = errors.New("user is inactive")
	ErrCodeGenerationFailed = errors.New("invite code generation failed")
)
