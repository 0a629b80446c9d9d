package models

type Admin struct {
	ID       int32  `json:"id"`
	RegCode  string `json:"regcode"`
	UserName string `json:"user_name"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email"`
	Pincode  string `json:"pincode"`
}

// AdminUser is a sub-user registered under an Admin.
type AdminUser struct {
	ID       int32  `json:"id"`
	AdminID  int32  `json:"admin_id"`
	RegCode  string `json:"regcode"`
	UserName string `json:"user_name"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email"`
	Pincode  string `json:"pincode"`
}
