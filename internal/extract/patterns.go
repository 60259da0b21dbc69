package extract

import "regexp"

// count matches a human-readable count token with optional unit suffix.
const count = `([0-9][0-9,.]{0,12}\s*(?:K|M|B|萬|億)?)`

// Phrase patterns for the text and meta tiers, ordered by specificity.
// Group 1 always captures the count token.
var (
	followerPhrases = []*regexp.Regexp{
		regexp.MustCompile(count + `\s*(?:位)?\s*(?:追蹤者|粉絲|關注者|訂閱者)`),
		regexp.MustCompile(count + `\s*(?:人)?\s*(?:追蹤|關注|訂閱)`),
		regexp.MustCompile(`(?i)` + count + `\s*followers`),
		regexp.MustCompile(`(?i)` + count + `\s*subscribers`),
	}
	likePhrases = []*regexp.Regexp{
		regexp.MustCompile(count + `\s*(?:人)?\s*(?:說讚|心情)`),
		regexp.MustCompile(count + `\s*(?:個)?\s*讚`),
		regexp.MustCompile(`(?i)` + count + `\s*likes?\b`),
		regexp.MustCompile(`(?i)` + count + `\s*(?:people\s+)?reacted`),
	}
	sharePhrases = []*regexp.Regexp{
		regexp.MustCompile(count + `\s*次\s*分享`),
		regexp.MustCompile(count + `\s*分享`),
		regexp.MustCompile(`(?i)` + count + `\s*shares?\b`),
	}
	memberPhrases = []*regexp.Regexp{
		regexp.MustCompile(count + `\s*(?:位|名)?\s*(?:成員|位成員)`),
		regexp.MustCompile(`(?i)` + count + `\s*members`),
	}
)

// Embedded structured-data keys used by the platforms' internal contracts.
// Group 1 captures a plain integer.
var (
	followerJSONKeys = []*regexp.Regexp{
		regexp.MustCompile(`(?i)"followers?_count"\s*:\s*(\d+)`),
		regexp.MustCompile(`(?i)"subscribers?_count"\s*:\s*(\d+)`),
		regexp.MustCompile(`(?i)"page_fans_count"\s*:\s*(\d+)`),
		regexp.MustCompile(`(?i)"fan_count"\s*:\s*(\d+)`),
		regexp.MustCompile(`(?i)"subscription_count"\s*:\s*(\d+)`),
		regexp.MustCompile(`"subscriberCount"\s*:\s*(\d+)`),
		regexp.MustCompile(`"edge_followed_by"\s*:\s*\{\s*"count"\s*:\s*(\d+)`),
	}
	likeJSONKeys = []*regexp.Regexp{
		regexp.MustCompile(`"reaction_count"\s*:\s*\{\s*"count"\s*:\s*(\d+)`),
		regexp.MustCompile(`"like_count"\s*:\s*(\d+)`),
		regexp.MustCompile(`"edge_liked_by"\s*:\s*\{\s*"count"\s*:\s*(\d+)`),
		regexp.MustCompile(`"edge_media_preview_like"\s*:\s*\{\s*"count"\s*:\s*(\d+)`),
	}
	shareJSONKeys = []*regexp.Regexp{
		regexp.MustCompile(`"share_count"\s*:\s*\{\s*"count"\s*:\s*(\d+)`),
		regexp.MustCompile(`"share_count"\s*:\s*(\d+)`),
		regexp.MustCompile(`"reshare_count"\s*:\s*(\d+)`),
	}
	memberJSONKeys = []*regexp.Regexp{
		regexp.MustCompile(`"(?:total_|group_)?member_count"\s*:\s*(\d+)`),
		regexp.MustCompile(`"group_total_members_info_text"\s*:\s*"` + count + `"`),
	}
)

// fieldSpec is the ordered strategy table for one metric field: phrase
// patterns run against the text tier, then the meta tier, then the
// structured-data keys run against the raw markup.
type fieldSpec struct {
	phrases []*regexp.Regexp
	json    []*regexp.Regexp
}

var (
	followersField = fieldSpec{phrases: followerPhrases, json: followerJSONKeys}
	likesField     = fieldSpec{phrases: likePhrases, json: likeJSONKeys}
	sharesField    = fieldSpec{phrases: sharePhrases, json: shareJSONKeys}
	membersField   = fieldSpec{phrases: memberPhrases, json: memberJSONKeys}
)
