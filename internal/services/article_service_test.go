package services_test

import (
	"errors"
	"testing"

	"tambour/internal/domain"
	"tambour/internal/repos"
	"tambour/internal/services"
)

func articleSvc(t *testing.T) *services.ArticleService {
	t.Helper()
	return services.NewArticleService(repos.NewArticleRepo(memdb(t)))
}

func TestArticle_EditorFlow(t *testing.T) {
	svc := articleSvc(t)

	a, err := svc.Create(domain.Article{Title: "Tendre une peau de chevre", Slug: "tendre-une-peau"})
	if err != nil {
		t.Fatal(err)
	}

	// sections arrive one at a time, each with its position
	if _, err := svc.AddSection(domain.ArticleSection{ArticleID: a.ID, Title: "Le trempage", Position: 1, Body: "..."}); err != nil {
		t.Fatal(err)
	}
	sec2, err := svc.AddSection(domain.ArticleSection{ArticleID: a.ID, Title: "Le sechage", Position: 2})
	if err != nil {
		t.Fatal(err)
	}

	detail, err := svc.GetBySlug("tendre-une-peau")
	if err != nil {
		t.Fatal(err)
	}
	if len(detail.Sections) != 2 || detail.Sections[0].Position != 1 || detail.Sections[1].Position != 2 {
		t.Fatalf("sections must come back in position order: %+v", detail.Sections)
	}

	sec2.Title = "Le sechage lent"
	if err := svc.UpdateSection(sec2); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteSection(sec2.ID); err != nil {
		t.Fatal(err)
	}
	detail, err = svc.Get(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(detail.Sections) != 1 {
		t.Fatalf("want one section left, got %d", len(detail.Sections))
	}

	if _, err := svc.AddSection(domain.ArticleSection{ArticleID: "f0000000-0000-4000-8000-000000000000", Title: "x"}); !errors.Is(err, services.ErrArticleNotFound) {
		t.Fatalf("want ErrArticleNotFound, got %v", err)
	}
}

func TestArticle_PublishedFilterAndComments(t *testing.T) {
	svc := articleSvc(t)

	pub, err := svc.Create(domain.Article{Title: "Entretien du cadre", Slug: "entretien-du-cadre", IsPublished: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(domain.Article{Title: "Brouillon", Slug: "brouillon"}); err != nil {
		t.Fatal(err)
	}

	published, err := svc.List("published", 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(published.Articles) != 1 || published.Articles[0].ID != pub.ID {
		t.Fatalf("bad published filter: %+v", published.Articles)
	}
	all, err := svc.List("all", 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all.Articles) != 2 {
		t.Fatalf("want 2 articles, got %d", len(all.Articles))
	}

	if _, err := svc.AddComment(pub.ID, seedUserID, "Merci", "Tres utile pour mon tambour."); err != nil {
		t.Fatal(err)
	}
	detail, err := svc.Get(pub.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(detail.Comments) != 1 || detail.Comments[0].UserID != seedUserID {
		t.Fatalf("bad comments: %+v", detail.Comments)
	}
}
