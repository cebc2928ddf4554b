package rag

import (
	"context"

	"github.com/surya16122114/immigration-ai-assistant/internal/knowledge"
)

// seedDocument is a reference document bundled with the binary so a fresh
// deployment can answer common questions before any real ingestion runs.
type seedDocument struct {
	ID       string
	Title    string
	Content  string
	Metadata map[string]string
}

var seedDocuments = []seedDocument{
	{
		ID:    "uscis_h1b_guide",
		Title: "H-1B Specialty Occupations Guide",
		Content: `H-1B Classification Overview:
The H-1B program allows companies to temporarily employ foreign workers in occupations that require highly specialized knowledge and a bachelor's degree or higher in the specific specialty, or its equivalent.

Key Requirements:
- The position must qualify as a specialty occupation
- The foreign worker must hold a U.S. bachelor's degree or higher, or its foreign equivalent
- The petitioner must file Form I-129 with required documentation
- The position must pay the prevailing wage or the actual wage paid to similarly employed workers

Annual Cap:
The H-1B program has an annual numerical limit (cap) of 65,000 visas each fiscal year, with an additional 20,000 visas available for individuals who have earned a U.S. master's degree or higher.

Application Process:
1. Employer files Labor Condition Application (LCA) with DOL
2. Employer files Form I-129 petition with USCIS
3. If approved and subject to cap, worker applies for visa at consulate or files for change of status

Duration:
Initial period up to 3 years, may be extended for additional 3 years (total maximum of 6 years).`,
		Metadata: map[string]string{
			knowledge.MetaSource:      "USCIS",
			knowledge.MetaURL:         "https://www.uscis.gov/working-in-the-united-states/temporary-workers/h-1b-specialty-occupations",
			knowledge.MetaCategory:    "h1b",
			knowledge.MetaLastUpdated: "2024-01-15",
		},
	},
	{
		ID:    "uscis_opt_guide",
		Title: "Optional Practical Training (OPT) Guide",
		Content: `Optional Practical Training (OPT) Overview:
OPT is temporary employment that is directly related to an F-1 student's major area of study. Students can apply for OPT to work in the United States for up to 12 months after graduation.

Types of OPT:
- Pre-completion OPT: Work while still enrolled in studies
- Post-completion OPT: Work after completing studies
- STEM OPT Extension: Additional 24 months for STEM graduates

Eligibility Requirements:
- Must be in valid F-1 status
- Must have been enrolled full-time for at least one academic year
- Must not have used 12 months of post-completion OPT previously
- Employment must be directly related to major area of study

Application Process:
1. Receive recommendation from Designated School Official (DSO)
2. File Form I-765 with USCIS
3. Pay required fees
4. Wait for Employment Authorization Document (EAD)

STEM Extension:
Students with degrees in Science, Technology, Engineering, and Mathematics fields may apply for a 24-month extension of their post-completion OPT.

Important Deadlines:
- Apply no earlier than 90 days before program completion
- Apply no later than 60 days after program completion
- Must begin employment within 90 days of EAD start date`,
		Metadata: map[string]string{
			knowledge.MetaSource:      "USCIS",
			knowledge.MetaURL:         "https://www.uscis.gov/working-in-the-united-states/students-and-exchange-visitors/optional-practical-training-opt-for-f-1-students",
			knowledge.MetaCategory:    "opt",
			knowledge.MetaLastUpdated: "2024-02-01",
		},
	},
	{
		ID:    "dos_green_card_process",
		Title: "Green Card Application Process",
		Content: `Permanent Residence (Green Card) Overview:
A green card gives you official immigration status in the United States, allowing you to live and work permanently in the country.

Ways to Get a Green Card:
- Through Family (immediate relatives, family preference categories)
- Through Employment (EB-1, EB-2, EB-3, EB-4, EB-5 categories)
- Through Investment (EB-5 Immigrant Investor Program)
- Through Special Programs (Diversity Visa, Special Immigrant categories)

Employment-Based Categories:
- EB-1: Priority workers (extraordinary ability, outstanding professors/researchers, multinational executives)
- EB-2: Advanced degree professionals or exceptional ability workers
- EB-3: Skilled workers, professionals, other workers
- EB-4: Special immigrants
- EB-5: Immigrant investors

Process Steps:
1. Labor Certification (PERM) - if required for category
2. File Form I-140 (Immigrant Petition for Alien Worker)
3. Wait for priority date to become current (if applicable)
4. Apply for adjustment of status (Form I-485) or consular processing

Priority Dates:
Most employment-based categories have annual limits, creating waiting periods for applicants from certain countries, particularly India and China.

Adjustment of Status vs. Consular Processing:
- Adjustment of Status: Apply while in the U.S.
- Consular Processing: Apply at U.S. consulate in home country`,
		Metadata: map[string]string{
			knowledge.MetaSource:      "Department of State",
			knowledge.MetaURL:         "https://travel.state.gov/content/travel/en/us-visas/immigrate.html",
			knowledge.MetaCategory:    "green_card",
			knowledge.MetaLastUpdated: "2024-01-30",
		},
	},
	{
		ID:    "uscis_fee_rule_2024",
		Title: "USCIS Fee Schedule Update",
		Content: `USCIS Fee Schedule Update Overview:
USCIS adjusted filing fees for most immigration benefit requests, the first comprehensive fee change since 2016. The new fees apply to filings postmarked on or after April 1, 2024.

Key Changes:
- Form I-129 (H-1B petitions): separate fee tiers for small employers and nonprofits
- Form I-485 (Adjustment of Status): interim benefits (work and travel authorization) are no longer bundled and must be paid separately
- New Asylum Program Fee applies to employment-based petitions filed by larger employers
- Online filing discounts are available for forms that can be submitted electronically

Practical Impact:
- Employers should budget for higher total costs on H-1B and permanent residence sponsorship
- Applicants filing Form I-485 who also need employment authorization should account for the separate Form I-765 fee
- Fee exemptions and reductions remain available for humanitarian categories

Filing Tips:
1. Verify the current fee for each form on the USCIS fee schedule before filing
2. Incorrect fees are a common cause of rejected filings
3. Premium processing remains available for eligible classifications at an additional fee`,
		Metadata: map[string]string{
			knowledge.MetaSource:      "USCIS",
			knowledge.MetaURL:         "https://www.uscis.gov/forms/filing-fees",
			knowledge.MetaCategory:    "fees",
			knowledge.MetaLastUpdated: "2024-04-01",
		},
	},
}

// SeedKnowledgeBase ingests the bundled reference documents. A failure on
// one document is logged and does not stop the rest; the number of
// successfully ingested documents is returned.
func (p *Pipeline) SeedKnowledgeBase(ctx context.Context) int {
	seeded := 0
	for _, doc := range seedDocuments {
		if err := p.Ingest(ctx, doc.Content, doc.ID, doc.Metadata); err != nil {
			p.logger.Error("failed to seed document",
				"document_id", doc.ID,
				"title", doc.Title,
				"error", err)
			continue
		}
		p.logger.Info("seeded document", "document_id", doc.ID, "title", doc.Title)
		seeded++
	}
	return seeded
}
