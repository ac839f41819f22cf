package template

import "testing"

func TestReplacePlaceholders(t *testing.T) {
	tests := []struct {
		name  string
		input string
		child string
		want  string
	}{
		{name: "トークンが名前に置き換わること", input: "{{name}}'s Big Adventure", child: "Mira", want: "Mira's Big Adventure"},
		{name: "トークンの無い文字列はそのままなこと", input: "A quiet evening", child: "Mira", want: "A quiet evening"},
		{name: "複数のトークンも全て置き換わること", input: "{{name}} and {{name}} again", child: "Mira", want: "Mira and Mira again"},
		{name: "名前が空なら何も起きないこと", input: "{{name}}'s Big Adventure", child: "", want: "{{name}}'s Big Adventure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReplacePlaceholders(tt.input, tt.child); got != tt.want {
				t.Errorf("期待値 '%s', 実際の値 '%s'", tt.want, got)
			}
		})
	}

	t.Run("置換は冪等なこと", func(t *testing.T) {
		once := ReplacePlaceholders("{{name}}'s Big Adventure", "Mira")
		twice := ReplacePlaceholders(once, "Mira")
		if once != twice {
			t.Errorf("2回目の置換で変化したのだ: '%s' -> '%s'", once, twice)
		}
	})
}
