package house

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetByID(ctx context.Context, houseID string) (*House, error)
	GetByIDForUpdate(ctx context.Context, houseID string) (*House, error)
	GetByInviteCode(ctx context.Context, code string) (*House, error)
	ListByUser(ctx context.Context, userID string) ([]House, error)
	GetMember(ctx context.Context, houseID, userID string) (*HouseMember, error)
	ListMembers(ctx context.Context, houseID string) ([]HouseMember, error)
	ListMembershipsByUser(ctx context.Context, userID string) ([]HouseMember, error)
	Create(ctx context.Context, house *House) error
	UpdateInviteCode(ctx context.Context, houseID, code string) error
	AddMember(ctx context.Context, member *HouseMember) error
	DeleteMember(ctx context.Context, houseID, userID string) error
	DeleteMembersByHouse(ctx context.Context, houseID string) error
	Delete(ctx context.Context, houseID string) error
	CountMembers(ctx context.Context, houseID string) (int64, error)
	CountMembersByRole(ctx context.Context, houseID, role string) (int64, error)
	IsInviteCodeTaken(ctx context.Context, code string) (bool, error)
}
