package model

// Role groups the privileges handed to new users.
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // OWNER, CASHIER
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleOwner   = "OWNER"
	RoleCashier = "CASHIER"
)

var DefaultRoles = []Role{
	{
		Code:        RoleOwner,
		Name:        "Pemilik Toko",
		Description: "Full access to catalog, stock, sales, debts and users",
	},
	{
		Code:        RoleCashier,
		Name:        "Kasir",
		Description: "Sales counter: record sales, take debt payments, view stock",
	},
}
