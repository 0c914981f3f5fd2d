package models

import "github.com/shopspring/decimal"

// DashboardSnapshot is a role-scoped statistics view. Exactly one of the
// role sections is set.
type DashboardSnapshot struct {
	Role         Role               `json:"role"`
	Admin        *AdminStats        `json:"admin,omitempty"`
	Agent        *AgentStats        `json:"agent,omitempty"`
	HotelManager *HotelManagerStats `json:"hotel_manager,omitempty"`
}

type AdminStats struct {
	TotalUsers          int64           `json:"total_users"`
	TotalAgents         int64           `json:"total_agents"`
	TotalHotelManagers  int64           `json:"total_hotel_managers"`
	TotalProperties     int64           `json:"total_properties"`
	PublishedProperties int64           `json:"published_properties"`
	TotalBookings       int64           `json:"total_bookings"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	RecentUsers         []*User         `json:"recent_users"`
}

type AgentStats struct {
	TotalProperties     int64           `json:"total_properties"`
	PublishedProperties int64           `json:"published_properties"`
	TotalBookings       int64           `json:"total_bookings"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	PendingInquiries    int64           `json:"pending_inquiries"`
	ScheduledViewings   int64           `json:"scheduled_viewings"`
	RecentInquiries     []*Inquiry      `json:"recent_inquiries"`
}

type HotelManagerStats struct {
	HotelID          int64           `json:"hotel_id,omitempty"`
	HotelName        string          `json:"hotel_name,omitempty"`
	TotalProperties  int64           `json:"total_properties"`
	ActiveListings   int64           `json:"active_listings"`
	TotalRooms       int64           `json:"total_rooms"`
	AvailableRooms   int64           `json:"available_rooms"`
	TotalBookings    int64           `json:"total_bookings"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	OccupancyRate    float64         `json:"occupancy_rate"`
	UpcomingBookings []*Booking      `json:"upcoming_bookings"`
}
