package services

import "fmt"

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildMatchAnalysisPrompt creates the prompt for CV-JD match analysis.
func (pb *PromptBuilder) BuildMatchAnalysisPrompt(jdText, cvText string) string {
	return fmt.Sprintf(`You are an expert HR analyst specializing in candidate evaluation. Analyze the CV against the Job Description and provide a comprehensive assessment.

Job Description:
%s

Candidate CV:
%s

Analyze and provide a JSON response with the following structure:
{
    "candidate_name": "extracted candidate name",
    "skill_match_score": <0-100>,
    "experience_score": <0-100>,
    "tool_tech_score": <0-100>,
    "seniority_score": <0-100>,
    "matched_skills": ["skill1", "skill2"],
    "missing_skills": ["skill1", "skill2"],
    "explanation": "Detailed explanation of the match, strengths, and gaps (2-3 sentences)"
}

Focus on:
1. Extract all required skills from the JD and check their presence in the CV
2. Evaluate years and relevance of experience
3. Match tools, technologies, and frameworks mentioned
4. Assess seniority level alignment
5. Provide a clear, actionable explanation

Return ONLY valid JSON, no additional text.`, jdText, cvText)
}

// BuildRequirementsPrompt creates the prompt for JD-only requirement extraction.
func (pb *PromptBuilder) BuildRequirementsPrompt(jdText string) string {
	return fmt.Sprintf(`Extract key requirements from the following Job Description:

%s

Provide a JSON response with:
{
    "required_skills": ["skill1", "skill2"],
    "required_tools": ["tool1", "tool2"],
    "required_experience_years": <number>,
    "seniority_level": "junior/mid/senior/lead",
    "key_responsibilities": ["responsibility1"]
}

Return ONLY valid JSON, no additional text.`, jdText)
}
