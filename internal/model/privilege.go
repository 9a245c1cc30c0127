package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "transaction:create"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivUserView          = "user:view"
	PrivUserManage        = "user:manage"
	PrivProductCreate     = "product:create"
	PrivProductUpdate     = "product:update"
	PrivProductDelete     = "product:delete"
	PrivCategoryManage    = "category:manage"
	PrivSupplierManage    = "supplier:manage"
	PrivStockAdjust       = "stock:adjust"
	PrivTransactionView   = "transaction:view"
	PrivTransactionCreate = "transaction:create"
	PrivTransactionCancel = "transaction:cancel"
	PrivDebtPay           = "debt:pay"
	PrivReportView        = "report:view"
)

var DefaultPrivileges = []Privilege{
	{Code: PrivUserView, Name: "View Users"},
	{Code: PrivUserManage, Name: "Manage Users"},
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivProductDelete, Name: "Delete Product"},
	{Code: PrivCategoryManage, Name: "Manage Categories"},
	{Code: PrivSupplierManage, Name: "Manage Suppliers"},
	{Code: PrivStockAdjust, Name: "Adjust Stock"},
	{Code: PrivTransactionView, Name: "View Transactions"},
	{Code: PrivTransactionCreate, Name: "Create Transaction"},
	{Code: PrivTransactionCancel, Name: "Cancel Transaction"},
	{Code: PrivDebtPay, Name: "Record Debt Payment"},
	{Code: PrivReportView, Name: "View Reports"},
}

// CashierPrivileges is the subset granted to the CASHIER role.
var CashierPrivileges = []string{
	PrivTransactionView,
	PrivTransactionCreate,
	PrivDebtPay,
}
