package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/charforge/internal/game/character"
	"github.com/cory-johannsen/charforge/internal/game/rules"
	"github.com/cory-johannsen/charforge/internal/game/ruleset"
)

// Server implements CatalogServer against a rules engine.
type Server struct {
	engine *rules.Engine
	logger *zap.Logger
}

// NewServer creates a catalog server.
//
// Precondition: engine and logger must be non-nil.
func NewServer(engine *rules.Engine, logger *zap.Logger) *Server {
	return &Server{engine: engine, logger: logger}
}

// NewGRPCServer returns a grpc.Server carrying the catalog and the standard
// health service. The health service reports SERVING for the catalog until
// Shutdown is called on it.
//
// Precondition: srv and logger must be non-nil.
func NewGRPCServer(srv CatalogServer, logger *zap.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append(opts, grpc.ChainUnaryInterceptor(loggingInterceptor(logger)))
	gs := grpc.NewServer(opts...)
	RegisterCatalogServer(gs, srv)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return gs, hs
}

func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("grpc request",
			zap.String("method", info.FullMethod),
			zap.Stringer("code", status.Code(err)),
			zap.Duration("elapsed", time.Since(start)),
		)
		return resp, err
	}
}

// ListRaces returns every playable race in display order.
func (s *Server) ListRaces(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	races := make([]any, 0, len(s.engine.Library().Races()))
	for _, r := range s.engine.Library().Races() {
		races = append(races, map[string]any{
			"id":      r.ID,
			"name":    r.Name,
			"summary": r.Summary,
		})
	}
	return newStruct(map[string]any{"races": races})
}

// GetRace returns one race, named by id or display name, with its default and
// alternate traits and the favored class options for every class.
//
// Postcondition: Returns codes.NotFound for an unknown id.
func (s *Server) GetRace(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id := in.GetFields()["id"].GetStringValue()
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	race, err := rules.ParsePlayableRace(id)
	if err != nil {
		return nil, toStatus(err)
	}
	lib := s.engine.Library()
	r, err := lib.Race(string(race))
	if err != nil {
		return nil, toStatus(err)
	}

	var defaults []any
	if dt, err := lib.DefaultTraitsFor(r.ID); err == nil {
		for _, t := range dt.Traits {
			defaults = append(defaults, traitMap(t.ID, t.Name, t.Category, t.Description))
		}
	}
	var alts []any
	for _, a := range lib.AltTraitsFor(r.ID) {
		m := traitMap(a.ID, a.Name, a.Category, a.Description)
		m["replaces"] = stringList(a.Replaces)
		alts = append(alts, m)
	}
	var favored []any
	for _, c := range lib.Classes() {
		for _, o := range lib.FavoredClassOptions(r.ID, c.ID) {
			favored = append(favored, map[string]any{
				"id":          o.ID,
				"class":       o.Class,
				"kind":        o.Kind,
				"description": o.Description,
			})
		}
	}

	return newStruct(map[string]any{
		"id":                r.ID,
		"name":              r.Name,
		"plural":            r.DisplayPlural(),
		"summary":           r.Summary,
		"description":       r.Description,
		"languages":         stringList(r.Languages),
		"bonus_languages":   stringList(r.BonusLanguages),
		"favored_class_tip": r.FavoredClassTip,
		"default_traits":    defaults,
		"alt_traits":        alts,
		"favored_options":   favored,
	})
}

// ListClasses returns every playable class with its archetype ids.
func (s *Server) ListClasses(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	lib := s.engine.Library()
	classes := make([]any, 0, len(lib.Classes()))
	for _, c := range lib.Classes() {
		var archetypes []string
		for _, a := range lib.ArchetypesFor(c.ID) {
			archetypes = append(archetypes, a.ID)
		}
		classes = append(classes, map[string]any{
			"id":          c.ID,
			"name":        c.Name,
			"summary":     c.Summary,
			"hit_die":     c.HitDie,
			"skill_ranks": c.SkillRanks,
			"bab":         c.BAB,
			"good_saves":  stringList(c.GoodSaves),
			"archetypes":  stringList(archetypes),
		})
	}
	return newStruct(map[string]any{"classes": classes})
}

// sheetRequest is the BuildSheet payload.
type sheetRequest struct {
	Name          string            `json:"name"`
	Race          string            `json:"race"`
	Class         string            `json:"class"`
	AltTraits     []string          `json:"alt_traits"`
	Archetypes    []string          `json:"archetypes"`
	FavoredOption string            `json:"favored_option"`
	Abilities     map[string]int    `json:"abilities"`
	Floating      map[string]string `json:"floating"`
	BonusFeats    map[string]string `json:"bonus_feats"`
}

// choices converts the request to engine choices. Missing abilities stay at 10.
func (r sheetRequest) choices() (rules.Choices, error) {
	c := rules.Choices{
		Name:          r.Name,
		Race:          r.Race,
		Class:         r.Class,
		AltTraits:     r.AltTraits,
		Archetypes:    r.Archetypes,
		FavoredOption: r.FavoredOption,
		BonusFeats:    r.BonusFeats,
	}
	scores := character.DefaultAbilityScores()
	for name, v := range r.Abilities {
		a, err := character.ParseAbility(name)
		if err != nil {
			return c, err
		}
		if v < 1 {
			return c, fmt.Errorf("%s score %d must be positive", a, v)
		}
		scores.Set(a, v)
	}
	c.Abilities = &scores
	for key, name := range r.Floating {
		a, err := character.ParseAbility(name)
		if err != nil {
			return c, err
		}
		if c.FloatingAbility == nil {
			c.FloatingAbility = make(map[string]character.Ability)
		}
		c.FloatingAbility[key] = a
	}
	return c, nil
}

// BuildSheet derives a level 1 sheet from the submitted choices. The response
// holds "sheet" (the structured sheet), "text" (the formatted sheet) and
// "complete" (false while floating choices are pending).
//
// Postcondition: Returns codes.NotFound for unknown content ids and
// codes.InvalidArgument for any other rejected choice.
func (s *Server) BuildSheet(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	raw, err := protojson.Marshal(in)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decoding request: %v", err)
	}
	var req sheetRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decoding request: %v", err)
	}
	c, err := req.choices()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	sheet, err := s.engine.Sheet(c)
	if err != nil {
		return nil, toStatus(err)
	}
	s.logger.Debug("sheet built",
		zap.String("race", sheet.Race),
		zap.String("class", sheet.Class),
		zap.Int("pending", len(sheet.Pending)),
	)

	data, err := json.Marshal(sheet)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding sheet: %v", err)
	}
	body := &structpb.Struct{}
	if err := protojson.Unmarshal(data, body); err != nil {
		return nil, status.Errorf(codes.Internal, "encoding sheet: %v", err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"sheet":    structpb.NewStructValue(body),
		"text":     structpb.NewStringValue(character.FormatSheet(sheet)),
		"complete": structpb.NewBoolValue(sheet.Complete()),
	}}, nil
}

// toStatus maps engine errors to gRPC status codes. Every assembly error other
// than a missing content id is a rejected choice.
func toStatus(err error) error {
	if errors.Is(err, ruleset.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	return status.Error(codes.InvalidArgument, err.Error())
}

func traitMap(id, name, category, description string) map[string]any {
	return map[string]any{
		"id":          id,
		"name":        name,
		"category":    category,
		"description": description,
	}
}

// stringList converts ss for structpb, which only accepts []any.
func stringList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return st, nil
}
