package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// AgeBracket は主人公のおおよその年齢帯を表します。
type AgeBracket string

const (
	AgeToddler    AgeBracket = "toddler"
	AgeYoungChild AgeBracket = "young_child"
	AgeOlderChild AgeBracket = "older_child"
)

// Valid は既知の年齢帯かどうかを返すのだ。
func (a AgeBracket) Valid() bool {
	switch a {
	case AgeToddler, AgeYoungChild, AgeOlderChild:
		return true
	}
	return false
}

// HairAttributes は髪の外見的特徴を保持します。
type HairAttributes struct {
	Color   string `json:"color"`
	Length  string `json:"length"`
	Texture string `json:"texture"`
	Style   string `json:"style,omitempty"`
}

// EyeAttributes は目の外見的特徴を保持します。
type EyeAttributes struct {
	Color string `json:"color"`
	Shape string `json:"shape,omitempty"`
}

// CharacterProfile は写真から抽出した主人公の構造化プロフィールです。
// DoNotChange はアイデンティティ・アンカーであり、要約時にも決して落としません。
type CharacterProfile struct {
	Name                string         `json:"name"`
	AgeBracket          AgeBracket     `json:"age_bracket"`
	Gender              string         `json:"gender,omitempty"`
	Hair                HairAttributes `json:"hair"`
	FaceShape           string         `json:"face_shape,omitempty"`
	Eyes                EyeAttributes  `json:"eyes"`
	SkinTone            string         `json:"skin_tone,omitempty"`
	DefaultExpression   string         `json:"default_expression,omitempty"`
	DistinctiveFeatures []string       `json:"distinctive_features,omitempty"`
	Clothing            string         `json:"clothing,omitempty"`
	ColorPalette        []string       `json:"color_palette,omitempty"`
	Personality         []string       `json:"personality,omitempty"`
	DoNotChange         []string       `json:"do_not_change"`
}

// LoadProfile は指定されたファイルパスからJSONを読み込み、プロフィールを返すのだ。
func LoadProfile(path string) (*CharacterProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("プロフィールファイルの読み込みに失敗したのだ: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile はJSONバイト列からプロフィールをパースして返すのだ。
func ParseProfile(data []byte) (*CharacterProfile, error) {
	var p CharacterProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("プロフィールのデコードに失敗したのだ: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate は画像生成に最低限必要なフィールドが揃っているか検証します。
func (p *CharacterProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("プロフィールに名前がないのだ")
	}
	if p.AgeBracket != "" && !p.AgeBracket.Valid() {
		return fmt.Errorf("未知の年齢帯なのだ: %s", p.AgeBracket)
	}
	return nil
}

// String はプロフィールの概要を文字列で返すのだ。
func (p CharacterProfile) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.AgeBracket)
}

// GetSeedFromName は名前から決定論的なシード値を生成します。
// 同じ子どもには常に同じシードを使い、画像の同一性を安定させます。
func GetSeedFromName(name string) int32 {
	hash := sha256.Sum256([]byte(name))
	// ハッシュの最初の4バイトを int32 に変換
	seed := int32(binary.BigEndian.Uint32(hash[:4]))
	// Geminiのシード値は正の数が望ましいため、最上位ビットを落とすのが安全なのだ
	return seed & 0x7FFFFFFF
}
