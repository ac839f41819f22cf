package domain

// 組み込みストーリーの識別情報です。パイプライン産の物語が見つからない
// 場合、ランタイム読み出しは常にこの物語へ落ちます。題名のトークンは
// 読み出し時に子どもの名前へ差し替わるのだ。
const (
	LegacyStoryID    = "moonlit-door"
	LegacyStoryName  = "{{name}} and the Moonlit Door"
	LegacyStoryPages = 12
)
