package prompts

import (
	"strings"
	"testing"
)

func TestStripFacialSentences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "顔の文だけが落ちること",
			in:   "She stands by the door. Her eyes sparkle with joy. She holds the lantern.",
			want: "She stands by the door. She holds the lantern.",
		},
		{
			name: "全文が顔の言及なら空になること",
			in:   "A big smile on her face.",
			want: "",
		},
		{
			name: "終端記号なしの入力は1文として判定されること",
			in:   "wide eyes full of wonder",
			want: "",
		},
		{
			name: "終端記号なしで無害な入力はそのまま残ること",
			in:   "standing in the garden",
			want: "standing in the garden",
		},
		{
			name: "感嘆符や疑問符でも文を区切れること",
			in:   "Look at the door! Her grin grows wider! She steps forward.",
			want: "Look at the door! She steps forward.",
		},
		{
			name: "髪の言及も取り除くこと",
			in:   "The wind lifts her hair gently. She runs ahead.",
			want: "She runs ahead.",
		},
		{
			name: "空入力は空のままであること",
			in:   "   ",
			want: "",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := StripFacialSentences(c.in); got != c.want {
				t.Errorf("期待値 '%s', 実際の値 '%s'", c.want, got)
			}
		})
	}
}

func TestSanitizeNameReferences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "主人公の一般名詞が置き換わること",
			in:   "The main character waves at the dog.",
			want: "the white outline placeholder waves at the dog.",
		},
		{
			name: "複数の言い回しをまとめて置き換えること",
			in:   "The child runs while our hero laughs.",
			want: "the white outline placeholder runs while the white outline placeholder laughs.",
		},
		{
			name: "名前トークンも置き換えること",
			in:   "{{name}} opens the door.",
			want: "the white outline placeholder opens the door.",
		},
		{
			name: "無関係な名詞は触らないこと",
			in:   "The dog chases the ball.",
			want: "The dog chases the ball.",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := SanitizeNameReferences(c.in, PlaceholderLabel); got != c.want {
				t.Errorf("期待値 '%s', 実際の値 '%s'", c.want, got)
			}
		})
	}
}

func TestStripFacialSentences_KeepsSentenceBoundaries(t *testing.T) {
	in := "She stands by the door. She holds the lantern."
	got := StripFacialSentences(in)
	if got != in {
		t.Errorf("無害な入力が書き換えられたのだ: '%s'", got)
	}
	if strings.Count(got, ".") != 2 {
		t.Errorf("文の区切りが壊れたのだ: '%s'", got)
	}
}
