package hr

// 字段映射表来自 Lark Base 各表的字段定义,字段名必须与 Base 完全一致

// ManpowerFields Manpower Request Form
var ManpowerFields = []FieldMapping{
	{LarkField: "Request No", OurField: "requestNo"},
	{LarkField: "Candidate Name", OurField: "candidateName"},
	{LarkField: "Status", OurField: "status"},
	{LarkField: "Approval Process", OurField: "approvalProcess"},
	{LarkField: "Submitted at", OurField: "submittedAt", IsDate: true},
	{LarkField: "Completed at", OurField: "completedAt", IsDate: true},
	{LarkField: "Title", OurField: "title"},
	{LarkField: "Department", OurField: "department"},
	{LarkField: "Position / Title", OurField: "position"},
	{LarkField: "Rank", OurField: "rank"},
	{LarkField: "Required Start Date", OurField: "requiredStartDate", IsDate: true},
	{LarkField: "Reason of Recruitment", OurField: "reasonOfRecruitment"},
	{LarkField: "New Headcount Needed", OurField: "newHeadcountNeeded"},
	{LarkField: "Job Description", OurField: "jobDescription"},
	{LarkField: "Employment Type", OurField: "employmentType"},
	{LarkField: "Reason to Recruit", OurField: "reasonToRecruit"},
	{LarkField: "Existing Position Headcount", OurField: "existingPositionHeadcount"},
	{LarkField: "Job Requirements", OurField: "jobRequirements"},
	{LarkField: "Initiator Department", OurField: "initiatorDepartment"},
}

// RecruitmentFields Recruitment Progress
var RecruitmentFields = []FieldMapping{
	{LarkField: "Recruitment", OurField: "recruitmentId"},
	{LarkField: "Status", OurField: "status"},
	{LarkField: "Candidate Name", OurField: "candidateName"},
	{LarkField: "Requestor", OurField: "requestor"},
	{LarkField: "Hiring Manager", OurField: "hiringManager"},
	{LarkField: "Hiring Position", OurField: "hiringPosition"},
	{LarkField: "Head Count", OurField: "headCount"},
	{LarkField: "Recruitment Start Date", OurField: "recruitmentStartDate", IsDate: true},
	{LarkField: "Commencement Date", OurField: "commencementDate", IsDate: true},
	{LarkField: "Candidate Info", OurField: "candidateInfo"},
}

// CandidateFields Candidate Management
var CandidateFields = []FieldMapping{
	{LarkField: "Candidate ID", OurField: "candidateId"},
	{LarkField: "Candidate Name", OurField: "candidateName"},
	{LarkField: "Position Applied", OurField: "positionApplied"},
	{LarkField: "Submission Channel", OurField: "submissionChannel"},
	{LarkField: "Interview Progress", OurField: "interviewProgress"},
	{LarkField: "Resume Evaluation", OurField: "resumeEvaluation"},
	{LarkField: "Status", OurField: "status"},
	{LarkField: "Commencement Date", OurField: "commencementDate", IsDate: true},
	{LarkField: "Hiring Manager", OurField: "hiringManager"},
	{LarkField: "Salary Offered (RM)", OurField: "salaryOffered"},
	{LarkField: "Recruitment Progress", OurField: "recruitmentProgress"},
}

// OnboardingFields Onboarding
var OnboardingFields = []FieldMapping{
	{LarkField: "OnboardingID", OurField: "onboardingId"},
	{LarkField: "Full Name", OurField: "fullName"},
	{LarkField: "Incoming Status", OurField: "incomingStatus"},
	{LarkField: "Commencement Date", OurField: "commencementDate", IsDate: true},
	{LarkField: "Department", OurField: "department"},
	{LarkField: "Position", OurField: "position"},
	{LarkField: "Offer Letter", OurField: "offerLetter"},
	{LarkField: "Pre-employment", OurField: "preEmployment"},
	{LarkField: "Rank Chart", OurField: "rankChart"},
	{LarkField: "Org Chart", OurField: "orgChart"},
	{LarkField: "P-file", OurField: "pFile"},
	{LarkField: "HR Confirmation", OurField: "hrConfirmation"},
	{LarkField: "Lark and InfoTech Acc", OurField: "larkAccount"},
	{LarkField: "Email Creation", OurField: "emailCreation"},
	{LarkField: "Access Assignment", OurField: "accessAssignment"},
	{LarkField: "Asset Assignment", OurField: "assetAssignment"},
	{LarkField: "Admin Confirmation", OurField: "adminConfirmation"},
	{LarkField: "Manager Confirmation", OurField: "managerConfirmation"},
	{LarkField: "Probation Pass", OurField: "probationPass"},
	{LarkField: "Completed", OurField: "completed"},
	{LarkField: "Company Email", OurField: "companyEmail"},
	{LarkField: "Probation Start Date", OurField: "probationStartDate", IsDate: true},
	{LarkField: "Probation End Date", OurField: "probationEndDate"},
}

// OffboardingFields Offboarding
var OffboardingFields = []FieldMapping{
	{LarkField: "OffboardingID", OurField: "offboardingId"},
	{LarkField: "Full Name (Nick name)", OurField: "fullName"},
	{LarkField: "Company", OurField: "company"},
	{LarkField: "Last Working Day", OurField: "lastWorkingDay", IsDate: true},
	{LarkField: "Rank Chart", OurField: "rankChart"},
	{LarkField: "Org Chart", OurField: "orgChart"},
	{LarkField: "P-File", OurField: "pFile"},
	{LarkField: "Exit Interview", OurField: "exitInterview"},
	{LarkField: "Handover Form", OurField: "handoverForm"},
	{LarkField: "HR Confirmation", OurField: "hrConfirmation"},
	{LarkField: "Name Card", OurField: "nameCard"},
	{LarkField: "Access Assignment", OurField: "accessAssignment"},
	{LarkField: "Asset Assignment", OurField: "assetAssignment"},
	{LarkField: "Lark and InfoTech Acc", OurField: "larkAccount"},
	{LarkField: "Admin Confirmation", OurField: "adminConfirmation"},
	{LarkField: "Finance Confirmation", OurField: "financeConfirmation"},
	{LarkField: "Manager Confirmation", OurField: "managerConfirmation"},
	{LarkField: "Offboard Reason", OurField: "offboardReason"},
	{LarkField: "Offboarded", OurField: "offboarded"},
	{LarkField: "Email (personal)", OurField: "personalEmail"},
}

// EmployeeFields Employee
var EmployeeFields = []FieldMapping{
	{LarkField: "UUID", OurField: "uuid"},
	{LarkField: "Full Name", OurField: "full_name"},
	{LarkField: "Nickname (WF)", OurField: "nickname"},
	{LarkField: "Company", OurField: "company"},
	{LarkField: "Gender", OurField: "gender"},
	{LarkField: "Job Title", OurField: "job_title"},
	{LarkField: "Primary Department", OurField: "primary_department"},
	{LarkField: "Status", OurField: "status"},
	{LarkField: "Offboarding Status", OurField: "offboarding_status"},
	{LarkField: "Date of Joining", OurField: "date_of_joining", IsDate: true},
	{LarkField: "Work Email", OurField: "work_email"},
	{LarkField: "Business Email", OurField: "business_email"},
	{LarkField: "Phone Number", OurField: "phone_number"},
	{LarkField: "Workforce Type", OurField: "workforce_type"},
	{LarkField: "Seats", OurField: "seats"},
	{LarkField: "Nationality", OurField: "nationality"},
	{LarkField: "City", OurField: "city"},
	{LarkField: "Marital Status", OurField: "marital_status"},
	{LarkField: "Contract Type", OurField: "contract_type"},
	{LarkField: "Education Level", OurField: "education_level"},
}

// EmployeeReadOnlyFields 员工表中 Lark 拒绝写入的字段
// 类型: 1005=autoId, 18=link, 15=email, 20=formula, 19=lookup, 11=person
var EmployeeReadOnlyFields = []string{
	"UUID", "Nationality", "Work Email", "Offboarding ID", "Onboarding ID",
	"Job Category", "Length Of Service", "Direct Manager ( Person )",
}

// OnboardingChecklist 入职 checklist 字段(内部字段名)
var OnboardingChecklist = []string{
	"offerLetter",
	"preEmployment",
	"rankChart",
	"orgChart",
	"pFile",
	"hrConfirmation",
	"larkAccount",
	"emailCreation",
	"accessAssignment",
	"assetAssignment",
	"adminConfirmation",
	"managerConfirmation",
	"probationPass",
}

// OffboardingChecklist 离职 checklist 字段(内部字段名)
var OffboardingChecklist = []string{
	"rankChart",
	"orgChart",
	"pFile",
	"exitInterview",
	"handoverForm",
	"hrConfirmation",
	"accessAssignment",
	"assetAssignment",
	"larkAccount",
	"adminConfirmation",
	"financeConfirmation",
	"managerConfirmation",
}

// Resource 一个 HR 流水线资源的路由、表与映射配置
type Resource struct {
	Name      string // URL 段: manpower, recruitment, candidates...
	TableKey  string // config lark.tables 中的键
	Label     string // 错误消息中使用的名称
	Mappings  []FieldMapping
	ReadOnly  []string // 写入前剔除的 Lark 字段
	Checklist []string // 进度统计使用的内部字段
}

// Resources 六个流水线资源
var Resources = []Resource{
	{Name: "manpower", TableKey: "manpower", Label: "manpower request", Mappings: ManpowerFields},
	{Name: "recruitment", TableKey: "recruitment", Label: "recruitment progress", Mappings: RecruitmentFields},
	{Name: "candidates", TableKey: "candidate", Label: "candidate", Mappings: CandidateFields},
	{Name: "onboarding", TableKey: "onboarding", Label: "onboarding record", Mappings: OnboardingFields, Checklist: OnboardingChecklist},
	{Name: "employees", TableKey: "employee", Label: "employee", Mappings: EmployeeFields, ReadOnly: EmployeeReadOnlyFields},
	{Name: "offboarding", TableKey: "offboarding", Label: "offboarding record", Mappings: OffboardingFields, Checklist: OffboardingChecklist},
}

// ResourceByName 按 URL 段查找资源配置
func ResourceByName(name string) (*Resource, bool) {
	for i := range Resources {
		if Resources[i].Name == name {
			return &Resources[i], true
		}
	}
	return nil, false
}
