package genai

import (
	"strconv"
	"strings"
)

// SystemPrompt frames the model as a Zhejiang admissions advisor.
const SystemPrompt = `你是浙江省高考志愿填报顾问。你只能依据 getMajorRecommendations 工具返回的专业录取数据给出建议，不得编造院校、专业或历年分数位次。最终答案只输出一个 JSON 对象，不要输出其他文字。`

// BuildPrompt renders the student profile and the answering rules.
func BuildPrompt(req Request) string {
	subjects := joinOr(req.Subjects, "")

	var b strings.Builder
	b.WriteString("请根据以下考生信息，为其推荐合适的高考志愿专业和大学：\n\n")
	b.WriteString("考生分数：" + strconv.Itoa(req.Score) + "\n")
	b.WriteString("全省排名：" + strconv.Itoa(req.Ranking) + "\n")
	b.WriteString("选考科目：" + subjects + "\n\n")
	b.WriteString("意向地区：" + joinOr(req.IntendedRegions, "无特殊偏好") + "\n")
	b.WriteString("意向专业类别：" + joinOr(req.IntendedCategories, "无特殊偏好") + "\n")
	b.WriteString("排除地区：" + joinOr(req.ExcludedRegions, "无") + "\n")
	b.WriteString("排除专业类别：" + joinOr(req.ExcludedCategories, "无") + "\n\n")

	b.WriteString("请综合考虑考生的分数、排名、**选考科目**、地区偏好、专业偏好以及排除项，并参考历史录取数据（尤其是近三年的分数和位次）和**专业的选科要求**，分析录取可能性，给出几条（例如5-10条）明确的专业志愿建议。\n\n")
	b.WriteString("**重要：推荐的专业必须符合考生的选考科目要求，且不得位于排除的地区或专业类别。**\n\n")
	b.WriteString("你可以并且应该使用 '" + ToolName + "' 工具来获取符合初步筛选条件的专业列表（例如基于意向地区和专业类别进行查询）。在调用工具时，仅传入用户明确指定的意向条件。工具会返回包含选科要求的专业信息。\n\n")
	b.WriteString("获取工具返回的专业列表后，你**必须**根据考生的选考科目（" + subjects + "）进一步筛选，确保推荐的每一个专业都满足选科要求。")
	b.WriteString("选科要求中“+”表示必须同时选考，“/”表示任选其一，“均可”“任选一”表示满足其中任意一门即可，“不限”表示没有要求。")
	b.WriteString("例如，如果专业要求“物理+化学”，而考生选了“物理+化学+生物”，则符合要求；如果专业要求“物理”，考生选了“历史+地理+政治”，则不符合。")
	b.WriteString("请注意各种选科要求组合的匹配规则（如“物理/历史均可”，“物理+化学/生物任选一”等）。\n\n")
	b.WriteString("最终的输出应包含推荐的、**符合选科要求的**专业列表（使用从工具获取并经过你筛选的数据，字段值保持与工具返回一致）和详细的推荐理由。理由需要解释为什么这些专业和学校适合该考生，特别是结合考生的分数排名和专业的历史录取位次进行对比分析，并明确说明该专业符合考生的选考科目要求。\n\n")
	b.WriteString(outputFormat)
	return b.String()
}

const outputFormat = `输出格式必须是 JSON，结构如下：
{
  "recommendedMajors": [
    {
      "majorName": "专业名称",
      "majorCode": "专业代码",
      "university": "大学名称",
      "admissionScore2022": 分数 (数字或null),
      "admissionRanking2022": 位次 (数字或null),
      "admissionScore2023": 分数 (数字或null),
      "admissionRanking2023": 位次 (数字或null),
      "admissionScore2024": 分数 (数字或null),
      "admissionRanking2024": 位次 (数字或null),
      "subjectRequirements": "选科要求描述"
    }
  ],
  "reasoning": "详细的推荐理由，解释选择这些专业的依据，包括录取概率分析、专业前景、学校特色以及如何符合选科要求等。"
}
`

func joinOr(values []string, empty string) string {
	if len(values) == 0 {
		return empty
	}
	return strings.Join(values, ", ")
}
