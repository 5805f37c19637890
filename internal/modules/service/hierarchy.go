package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/buildvault/bimlibrary/internal/modules/model"
	"github.com/buildvault/bimlibrary/internal/modules/repo"
	"github.com/buildvault/bimlibrary/internal/pkg/apperr"
)

type NodeKind string

const (
	NodeCompany    NodeKind = "company"
	NodeProject    NodeKind = "project"
	NodeDiscipline NodeKind = "discipline"
	NodeViewSet    NodeKind = "view_set"
	NodeAsset      NodeKind = "asset"
)

// Node is one entry in the navigable Company → Project → Discipline → Asset
// tree. ForceExpand is set on every node kept by a search so ancestors of a
// match always render expanded, independent of any persisted expand/collapse
// preference (which lives outside this subsystem).
type Node struct {
	Kind        NodeKind     `json:"kind"`
	ID          uuid.UUID    `json:"id"`
	Label       string       `json:"label"`
	ForceExpand bool         `json:"force_expand,omitempty"`
	Asset       *model.Asset `json:"asset,omitempty"`
	Children    []*Node      `json:"children,omitempty"`
}

// BuildTree is a pure transformation of flat catalog rows into the nested
// navigable tree. Pruning rules: a discipline folder needs at least one
// non-trashed asset, a project needs at least one view set or non-empty
// discipline folder, a company needs at least one kept project. Empty
// folders are never shown. With a non-empty searchTerm the tree is filtered
// by case-insensitive substring match on node labels; ancestors of any match
// are kept and force-expanded.
func BuildTree(
	companies []*model.Company,
	projects []*model.Project,
	disciplines []*model.Discipline,
	assets []*model.Asset,
	viewSets []*model.ViewSet,
	searchTerm string,
) []*Node {
	// Trashed assets are invisible to the hierarchy.
	assetsByProject := make(map[uuid.UUID][]*model.Asset)
	for _, a := range assets {
		if a.IsTrashed {
			continue
		}
		assetsByProject[a.ProjectID] = append(assetsByProject[a.ProjectID], a)
	}

	setsByProject := make(map[uuid.UUID][]*model.ViewSet)
	for _, vs := range viewSets {
		setsByProject[vs.ProjectID] = append(setsByProject[vs.ProjectID], vs)
	}

	projectsByCompany := make(map[uuid.UUID][]*model.Project)
	for _, p := range projects {
		projectsByCompany[p.CompanyID] = append(projectsByCompany[p.CompanyID], p)
	}

	var tree []*Node
	for _, company := range companies {
		companyNode := &Node{Kind: NodeCompany, ID: company.ID, Label: company.Name}

		for _, project := range projectsByCompany[company.ID] {
			projectNode := buildProjectNode(project, disciplines, assetsByProject[project.ID], setsByProject[project.ID])
			if projectNode != nil {
				companyNode.Children = append(companyNode.Children, projectNode)
			}
		}

		if len(companyNode.Children) > 0 {
			tree = append(tree, companyNode)
		}
	}

	if strings.TrimSpace(searchTerm) == "" {
		return tree
	}
	return filterNodes(tree, strings.ToLower(searchTerm))
}

func buildProjectNode(project *model.Project, disciplines []*model.Discipline, assets []*model.Asset, sets []*model.ViewSet) *Node {
	node := &Node{Kind: NodeProject, ID: project.ID, Label: project.Name}

	for _, vs := range sets {
		node.Children = append(node.Children, &Node{
			Kind:  NodeViewSet,
			ID:    vs.ID,
			Label: vs.Name,
		})
	}

	assetsByDiscipline := make(map[uuid.UUID][]*model.Asset)
	for _, a := range assets {
		assetsByDiscipline[a.DisciplineID] = append(assetsByDiscipline[a.DisciplineID], a)
	}

	for _, d := range disciplines {
		folderAssets := assetsByDiscipline[d.ID]
		if len(folderAssets) == 0 {
			continue
		}

		// Newest model first inside each folder.
		sort.SliceStable(folderAssets, func(i, j int) bool {
			return folderAssets[i].CreatedAt.After(folderAssets[j].CreatedAt)
		})

		folder := &Node{Kind: NodeDiscipline, ID: d.ID, Label: d.Name}
		for _, a := range folderAssets {
			folder.Children = append(folder.Children, &Node{
				Kind:  NodeAsset,
				ID:    a.ID,
				Label: a.DisplayName,
				Asset: a,
			})
		}
		node.Children = append(node.Children, folder)
	}

	if len(node.Children) == 0 {
		return nil
	}
	return node
}

// filterNodes keeps a node when its own label matches the lowercased term or
// any descendant does. A kept node renders its filtered children, not the
// original set, and is force-expanded. Applying the same filter twice yields
// the same kept set.
func filterNodes(nodes []*Node, term string) []*Node {
	var kept []*Node
	for _, n := range nodes {
		filteredChildren := filterNodes(n.Children, term)
		if strings.Contains(strings.ToLower(n.Label), term) || len(filteredChildren) > 0 {
			kept = append(kept, &Node{
				Kind:        n.Kind,
				ID:          n.ID,
				Label:       n.Label,
				ForceExpand: true,
				Asset:       n.Asset,
				Children:    filteredChildren,
			})
		}
	}
	return kept
}

// HierarchyService assembles the tree from a fresh full read of the catalog.
// The tree is never patched in place after a mutation; callers simply fetch
// it again.
type HierarchyService interface {
	Tree(ctx context.Context, tenantID uuid.UUID, searchTerm string) ([]*Node, error)
}

type hierarchyService struct {
	assets repo.AssetRepo
	sets   repo.ViewSetRepo
	refs   repo.ReferenceRepo
}

func NewHierarchyService(assets repo.AssetRepo, sets repo.ViewSetRepo, refs repo.ReferenceRepo) HierarchyService {
	return &hierarchyService{assets: assets, sets: sets, refs: refs}
}

func (s *hierarchyService) Tree(ctx context.Context, tenantID uuid.UUID, searchTerm string) ([]*Node, error) {
	if tenantID == uuid.Nil {
		return nil, apperr.Validation("tenant id is required")
	}

	companies, err := s.refs.ListCompanies(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	projects, err := s.refs.ListProjects(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	disciplines, err := s.refs.ListDisciplines(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	assets, err := s.assets.List(ctx, tenantID, false)
	if err != nil {
		return nil, err
	}
	viewSets, err := s.sets.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	return BuildTree(companies, projects, disciplines, assets, viewSets, searchTerm), nil
}
