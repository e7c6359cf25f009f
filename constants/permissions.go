package constants

// Portal permissions carried in the JWT "permissions" claim.
const (
	// Admin permissions
	PermSuperAdminFull = "clinic-portal.super-admin.full-permit"
	PermAdminFull      = "clinic-portal.admin.full-permit"

	// Clinical staff permissions
	PermDoctorFull = "clinic-portal.doctor.full-permit"
	PermNurseFull  = "clinic-portal.nurse.full-permit"

	// Patient permissions
	PermPatientFull = "clinic-portal.patient.full-permit"

	// Special permissions
	PermAny = "any"
)

// Permission groups for convenience
var (
	AdminPermissions = []string{
		PermSuperAdminFull,
		PermAdminFull,
	}

	ClinicalPermissions = []string{
		PermDoctorFull,
		PermNurseFull,
	}
)
