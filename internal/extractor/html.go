package extractor

import (
	"time"

	"linkedin-job-tracker/internal/models"
)

// Field names match the record's JSON keys so configured selectors can be
// addressed the same way.
const (
	fieldTitle              = "Title"
	fieldDescription        = "Description"
	fieldLocation           = "Location"
	fieldCompanyName        = "Company Name"
	fieldCompanyLogo        = "Company Logo"
	fieldApplyURL           = "Company Apply Url"
	fieldCompanyDescription = "Company Description"
	fieldWebsite            = "Company Website"
	fieldIndustry           = "Industry"
	fieldEmployeeCount      = "Employee Count"
	fieldHeadquarters       = "Headquarters"
	fieldFounded            = "Company Founded"
	fieldSpecialties        = "Specialties"
	fieldPosterID           = "Poster Id"
	fieldCreatedAt          = "Created At"
)

type field struct {
	name  string
	chain []strategy
	apply func(raw *models.RawJob, v string, now time.Time)
}

type listField struct {
	name  string
	chain []listStrategy
	apply func(raw *models.RawJob, v []string)
}

var htmlFields = []field{
	{
		name: fieldTitle,
		chain: []strategy{
			text("h1.top-card-layout__title"),
			text("h1.topcard__title"),
			text("h1.t-24.job-details-jobs-unified-top-card__job-title"),
			text(".job-details-jobs-unified-top-card__job-title h1"),
			text("h2.top-card-layout__title"),
			text("h1"),
			cleaned(CleanTitle, attr("meta[property='og:title']", "content")),
			cleaned(CleanTitle, text("title")),
			fromPosting(func(p *jsonLDPosting) string { return p.Title }),
		},
		apply: func(raw *models.RawJob, v string, _ time.Time) { setString(&raw.Title, v) },
	},
	{
		name: fieldDescription,
		chain: []strategy{
			minLen(descriptionMinLen, text("div.description__text")),
			minLen(descriptionMinLen, text("div.show-more-less-html__markup")),
			minLen(descriptionMinLen, text("section.description")),
			minLen(descriptionMinLen, text("div.jobs-description__content")),
			minLen(descriptionMinLen, text("div.jobs-box__html-content")),
			minLen(descriptionMinLen, text("article")),
			fromPosting((*jsonLDPosting).plainDescription),
			remoteDescription,
			containersMatching(fallbackMinLen, "description", "detail"),
			showMoreParent(fallbackMinLen),
			literal(NoDescription),
		},
		apply: func(raw *models.RawJob, v string, _ time.Time) { setString(&raw.Description, v) },
	},
	{
		name: fieldLocation,
		chain: []strategy{
			text("span.topcard__flavor--bullet"),
			text("span.job-details-jobs-unified-top-card__bullet"),
			text(".top-card-layout__second-subline span.topcard__flavor--bullet"),
			text(".job-details-jobs-unified-top-card__primary-description-container span"),
			fromPosting((*jsonLDPosting).location),
		},
		apply: func(raw *models.RawJob, v string, _ time.Time) { setString(&raw.Location, MarkRemote(v)) },
	},
	{
		name: fieldCompanyName,
		chain: []strategy{
			text("a.topcard__org-name-link"),
			text("span.topcard__flavor a"),
			text(".job-details-jobs-unified-top-card__company-name a"),
			text(".job-details-jobs-unified-top-card__company-name"),
			fromPosting((*jsonLDPosting).companyName),
		},
		apply: func(raw *models.RawJob, v string, _ time.Time) { setString(&raw.CompanyName, v) },
	},
	{
		name: fieldCompanyLogo,
		chain: []strategy{
			attr("img.artdeco-entity-image", "src", "data-delayed-url"),
			attr(".top-card-layout__card img", "src", "data-delayed-url"),
			fromPosting((*jsonLDPosting).companyLogo),
		},
		apply: func(raw *models.RawJob, v string, _ time.Time) { setString(&raw.CompanyLogo, v) },
	},
	{
		name: fieldApplyURL,
		chain: []strategy{
			attr("a.apply-button", "href"),
		},
		apply: func(raw *models.RawJob, v string, _ time.Time) { setString(&raw.CompanyApplyURL, v) },
	},
	{
		name: fieldCompanyDescription,
		chain: []strategy{
			text("div.company-description"),
			text("section.company-description"),
		},
		apply: func(raw *models.RawJob, v string, _ time.Time) { setString(&raw.CompanyDescription, v) },
	},
	{
		name: fieldWebsite,
		chain: []strategy{
			attr(`a[href*="://"].link-without-visited-state`, "href"),
			fromPosting((*jsonLDPosting).companyWebsite),
		},
		apply: func(raw *models.RawJob, v string, _ time.Time) { setString(&raw.CompanyWebsite, v) },
	},
	{
		name: fieldIndustry,
		chain: []strategy{
			criterion("industr"),
			cleaned(func(s string) string { return stripLabel(s, "Industry") }, detailItem("industry")),
			fromPosting((*jsonLDPosting).industry),
		},
		apply: func(raw *models.RawJob, v string, _ time.Time) { setString(&raw.Industry, v) },
	},
	{
		name: fieldEmployeeCount,
		chain: []strategy{
			detailItem("employees"),
		},
		apply: func(raw *models.RawJob, v string, _ time.Time) {
			if n, ok := ParseEmployeeCount(v); ok {
				raw.EmployeeCount = n
			}
		},
	},
	{
		name: fieldHeadquarters,
		chain: []strategy{
			cleaned(func(s string) string { return stripLabel(s, "Headquarters") }, detailItem("headquarters")),
		},
		apply: func(raw *models.RawJob, v string, _ time.Time) { setString(&raw.Headquarters, v) },
	},
	{
		name: fieldFounded,
		chain: []strategy{
			detailItem("founded"),
		},
		apply: func(raw *models.RawJob, v string, _ time.Time) {
			if n, ok := ParseFoundedYear(v); ok {
				raw.CompanyFounded = n
			}
		},
	},
	{
		name: fieldSpecialties,
		chain: []strategy{
			text("div.specialties"),
		},
		apply: func(raw *models.RawJob, v string, _ time.Time) { raw.Specialties = v },
	},
	{
		name: fieldPosterID,
		chain: []strategy{
			attr("[data-poster-id]", "data-poster-id"),
			attr("[data-company-id]", "data-company-id"),
			urnDigits("[data-entity-urn]", "data-entity-urn"),
		},
		apply: func(raw *models.RawJob, v string, _ time.Time) { setString(&raw.PosterID, v) },
	},
	{
		name: fieldCreatedAt,
		chain: []strategy{
			attr("time[datetime]", "datetime"),
			text("span.posted-date"),
			text("span.posted-time-ago__text"),
			text("time"),
			fromPosting(func(p *jsonLDPosting) string { return p.DatePosted }),
		},
		apply: func(raw *models.RawJob, v string, now time.Time) { raw.CreatedAt = parseDate(v, now) },
	},
}

var htmlListFields = []listField{
	{
		name: "Skill",
		chain: []listStrategy{
			texts("li.job-details-skill-match-status-list__skill"),
			texts("span.job-details-skill-match-status-list__text"),
		},
		apply: func(raw *models.RawJob, v []string) { raw.Skill = v },
	},
	{
		name: "Insight",
		chain: []listStrategy{
			criteriaPairs,
		},
		apply: func(raw *models.RawJob, v []string) { raw.Insight = v },
	},
}
