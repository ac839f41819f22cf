package domain

import "testing"

func TestPages_Find(t *testing.T) {
	ps := Pages{
		{Page: 1, Scene: "garden"},
		{Page: 2, Scene: "door"},
	}

	if p := ps.Find(2); p == nil || p.Scene != "door" {
		t.Error("ページ2が引けないのだ")
	}
	if p := ps.Find(9); p != nil {
		t.Error("存在しないページで nil が返りませんでした")
	}

	// Find の戻りはスライス内実体へのポインタであること（URL付与で使う）
	ps.Find(1).SketchURL = "out/page_01_sketch.png"
	if ps[0].SketchURL == "" {
		t.Error("ポインタ経由の書き込みが反映されていません")
	}
}

func TestPromptTable_For(t *testing.T) {
	pt := PromptTable{{Page: 3, Prompt: "a prompt"}}

	if p, ok := pt.For(3); !ok || p != "a prompt" {
		t.Errorf("期待値 'a prompt', 実際の値 '%s'", p)
	}
	if _, ok := pt.For(1); ok {
		t.Error("未登録ページで ok=true が返ったのだ")
	}
}

func TestBook_Counts(t *testing.T) {
	b := &Book{
		Pages: Pages{
			{Page: 1, SketchURL: "s1", ImageURL: "f1"},
			{Page: 2, SketchURL: "s2"},
			{Page: 3},
		},
	}

	if b.PageCount() != 3 {
		t.Errorf("総ページ数 期待値 3, 実際の値 %d", b.PageCount())
	}
	if b.SketchedCount() != 2 {
		t.Errorf("下絵数 期待値 2, 実際の値 %d", b.SketchedCount())
	}
	if b.IllustratedCount() != 1 {
		t.Errorf("本絵数 期待値 1, 実際の値 %d", b.IllustratedCount())
	}
}
