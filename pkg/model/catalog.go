package model

// PeriodCustom marks a stock whose holding period is given as a date range.
const PeriodCustom = "직접 입력"

// Periods is the holding period enumeration. The first entry is the default.
var Periods = []string{
	"1주일 이내",
	"1개월 이내",
	"3개월 이내",
	"6개월 이내",
	"1년 이상",
	PeriodCustom,
}

// TradePatterns is the catalog of selectable trading habits.
var TradePatterns = []string{
	"물타기",
	"불타기",
	"추격 매수",
	"손절 지연",
	"뇌동 매매",
	"단타",
	"장기 방치",
}

// DecisionOptions is the catalog of decision basis tags.
var DecisionOptions = []string{
	"FOMO",
	"뉴스/공시",
	"유튜브/커뮤니티",
	"지인 추천",
	"기술적 분석",
	"기업 가치 분석",
	"직감",
}

// SuggestedQuestions are offered as follow-ups under every report.
var SuggestedQuestions = []string{
	"이 패턴을 어떻게 개선할 수 있을까요?",
	"당시 시장 상황을 더 자세히 알려주세요.",
	"비슷한 실수를 방지하려면?",
}

// InCatalog reports whether v is one of options.
func InCatalog(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
