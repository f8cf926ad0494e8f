package source

// Raw upstream record shapes. Optional fields are pointers so the
// normalizer can tell "absent" from "zero".

// Company is a raw school/company record.
type Company struct {
	ID        string `bson:"_id" json:"id"`
	Name      string `bson:"name" json:"name"`
	ShortName string `bson:"short_name,omitempty" json:"shortname,omitempty"`
	City      string `bson:"city,omitempty" json:"city,omitempty"`
	Country   string `bson:"country,omitempty" json:"country,omitempty"`
	Region    string `bson:"region,omitempty" json:"region,omitempty"`
	Status    string `bson:"status,omitempty" json:"status,omitempty"`
	Suspended bool   `bson:"suspended,omitempty" json:"suspended,omitempty"`
	MaxUsers  int    `bson:"max_users,omitempty" json:"maxusers,omitempty"`
}

// User is a raw platform user. LastAccess is unix seconds, 0 when never.
type User struct {
	ID         string `bson:"_id" json:"id"`
	Username   string `bson:"username,omitempty" json:"username,omitempty"`
	FirstName  string `bson:"first_name,omitempty" json:"firstname,omitempty"`
	LastName   string `bson:"last_name,omitempty" json:"lastname,omitempty"`
	FullName   string `bson:"full_name,omitempty" json:"fullname,omitempty"`
	Email      string `bson:"email,omitempty" json:"email,omitempty"`
	Role       string `bson:"role" json:"role"`
	CompanyID  string `bson:"company_id,omitempty" json:"companyid,omitempty"`
	LastAccess int64  `bson:"last_access,omitempty" json:"lastaccess,omitempty"`
}

// Course is a raw course record.
type Course struct {
	ID            string   `bson:"_id" json:"id"`
	FullName      string   `bson:"full_name" json:"fullname"`
	CompanyID     string   `bson:"company_id,omitempty" json:"companyid,omitempty"`
	Format        string   `bson:"format,omitempty" json:"format,omitempty"`
	Visible       *bool    `bson:"visible,omitempty" json:"visible,omitempty"`
	StartDate     int64    `bson:"start_date,omitempty" json:"startdate,omitempty"`
	EndDate       int64    `bson:"end_date,omitempty" json:"enddate,omitempty"`
	EnrolledCount *int     `bson:"enrolled_count,omitempty" json:"enrolledcount,omitempty"`
	Rating        *float64 `bson:"rating,omitempty" json:"rating,omitempty"`
	Level         *string  `bson:"level,omitempty" json:"level,omitempty"`
	Duration      *string  `bson:"duration,omitempty" json:"duration,omitempty"`
	Instructor    *string  `bson:"instructor,omitempty" json:"instructor,omitempty"`
	Tags          []string `bson:"tags,omitempty" json:"tags,omitempty"`
}

// Enrollment links a user to a course with their progress.
type Enrollment struct {
	UserID    string  `bson:"user_id" json:"userid"`
	CourseID  string  `bson:"course_id" json:"courseid"`
	Progress  float64 `bson:"progress" json:"progress"`
	Completed bool    `bson:"completed" json:"completed"`
}

// AttendanceRecord is one raw attendance session. Date is YYYY-MM-DD.
type AttendanceRecord struct {
	ID         string `bson:"_id" json:"id"`
	Label      string `bson:"label,omitempty" json:"session,omitempty"`
	Date       string `bson:"date" json:"date"`
	Type       string `bson:"type,omitempty" json:"type,omitempty"`
	Present    int    `bson:"present" json:"present"`
	Total      int    `bson:"total" json:"total"`
	Instructor string `bson:"instructor,omitempty" json:"instructor,omitempty"`
	Location   string `bson:"location,omitempty" json:"location,omitempty"`
	StartTime  string `bson:"start_time,omitempty" json:"starttime,omitempty"`
	EndTime    string `bson:"end_time,omitempty" json:"endtime,omitempty"`
}

// Performance is the per-user rating lookup.
type Performance struct {
	AverageRating float64 `bson:"average_rating" json:"averagerating"`
	Ratings       int     `bson:"ratings" json:"ratings"`
}

// SchoolUpdate is the set of mutable school fields. Nil fields are left as-is.
type SchoolUpdate struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	City     *string `json:"city,omitempty" validate:"omitempty,max=120"`
	Country  *string `json:"country,omitempty" validate:"omitempty,max=120"`
	Region   *string `json:"region,omitempty" validate:"omitempty,max=120"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	MaxUsers *int    `json:"max_users,omitempty" validate:"omitempty,min=0"`
}

// Empty reports whether the update carries no fields.
func (u SchoolUpdate) Empty() bool {
	return u.Name == nil && u.City == nil && u.Country == nil &&
		u.Region == nil && u.Status == nil && u.MaxUsers == nil
}
