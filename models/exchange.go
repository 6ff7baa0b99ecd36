package models

// Exchange is the typed view of an exchange program record
type Exchange struct {
	ProgramName       string `json:"program_name"`
	PartnerUniversity string `json:"partner_university"`
	WhoCanApply       string `json:"who_can_apply"`
	StartReg          string `json:"start_reg"`
	EndReg            string `json:"end_reg"`
	Duration          string `json:"duration"`
	Website           string `json:"website"`
}

func ExchangeFromRecord(r Record) Exchange {
	return Exchange{
		ProgramName:       r.Get("program_name"),
		PartnerUniversity: r.Get("partner_university"),
		WhoCanApply:       r.Get("who_can_apply"),
		StartReg:          r.Get("start_reg"),
		EndReg:            r.Get("end_reg"),
		Duration:          r.Get("duration"),
		Website:           r.Get("website"),
	}
}

// Internship is the typed view of an internship record
type Internship struct {
	InternshipProgram   string `json:"internship_program"`
	FieldDepartment     string `json:"field_department"`
	DurationDetails     string `json:"duration_details"`
	Location            string `json:"location"`
	ApplicationDeadline string `json:"application_deadline"`
	ApplicationLink     string `json:"application_link"`
}

func InternshipFromRecord(r Record) Internship {
	return Internship{
		InternshipProgram:   r.Get("internship_program"),
		FieldDepartment:     r.Get("field_department"),
		DurationDetails:     r.Get("duration_details"),
		Location:            r.Get("location"),
		ApplicationDeadline: r.Get("application_deadline"),
		ApplicationLink:     r.Get("application_link"),
	}
}
