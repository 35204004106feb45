package mcpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "0.1.0"

type Retriever interface {
	Retrieve(ctx context.Context, startupId string, question string, topK int, minSimilarity float64) ([]commonModels.RetrievedChunk, error)
}

// Server exposes knowledge retrieval and grant matching as MCP tools.
type Server struct {
	retriever Retriever
	startups  grantModel.StartupRepository
	grants    grantModel.GrantRepository
	server    *mcp.Server
	now       func() time.Time
}

func NewServer(retriever Retriever, startups grantModel.StartupRepository, grants grantModel.GrantRepository) *Server {
	s := &Server{
		retriever: retriever,
		startups:  startups,
		grants:    grants,
		server:    mcp.NewServer(&mcp.Implementation{Name: "grant-agent", Version: Version}, nil),
		now:       time.Now,
	}
	s.registerTools()
	return s
}

// Handler serves the tools over streamable HTTP.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}
