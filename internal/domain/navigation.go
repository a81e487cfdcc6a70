package domain

type View string

const (
	ViewDashboard View = "dashboard"
	ViewRecords   View = "records"
	ViewReview    View = "review"
	ViewUsers     View = "users"
	ViewSettings  View = "settings"
)

type NavItem struct {
	View  View
	Label string
	Path  string
}

var navItems = []NavItem{
	{View: ViewDashboard, Label: "ภาพรวม", Path: "/"},
	{View: ViewRecords, Label: "บันทึกของฉัน", Path: "/records"},
	{View: ViewReview, Label: "รายการรอตรวจ", Path: "/review"},
	{View: ViewUsers, Label: "จัดการผู้ใช้", Path: "/users"},
	{View: ViewSettings, Label: "ตั้งค่าระบบ", Path: "/settings"},
}

var capabilities = map[Role]map[View]bool{
	RoleTeacher: {
		ViewDashboard: true,
		ViewRecords:   true,
	},
	RoleAdmin: {
		ViewDashboard: true,
		ViewRecords:   true,
		ViewReview:    true,
		ViewUsers:     true,
		ViewSettings:  true,
	},
}

func CanView(role Role, view View) bool {
	return capabilities[role][view]
}

// VisibleNav returns the navigation entries for role in menu order.
func VisibleNav(role Role) []NavItem {
	items := []NavItem{}
	for _, item := range navItems {
		if CanView(role, item.View) {
			items = append(items, item)
		}
	}
	return items
}
