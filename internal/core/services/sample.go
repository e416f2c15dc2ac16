package services

import (
	"fmt"
	"strconv"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

// SampleDocuments returns a small knowledge base about Azure AI services.
// IDs are fixed so re-ingesting overwrites rather than duplicates.
func SampleDocuments() []domain.Document {
	return []domain.Document{
		{
			ID:       "azure-openai",
			Title:    "Azure OpenAI Service",
			Category: "AI Services",
			Source:   "Azure Documentation",
			Content: "Azure OpenAI Service provides REST API access to OpenAI's language models " +
				"including GPT-4, GPT-3.5-Turbo and the Embeddings model series. Models are deployed " +
				"into an Azure resource and accessed by deployment name, with enterprise security, " +
				"private networking and regional availability.",
		},
		{
			ID:       "azure-ai-search",
			Title:    "Azure AI Search",
			Category: "Search",
			Source:   "Azure Documentation",
			Content: "Azure AI Search is a cloud search service that gives developers infrastructure, " +
				"APIs and tools for building rich search experiences over private content. It supports " +
				"full-text, vector and hybrid search with HNSW indexes and semantic ranking.",
		},
		{
			ID:       "rag-pattern",
			Title:    "Retrieval Augmented Generation",
			Category: "Architecture",
			Source:   "Azure Architecture Center",
			Content: "Retrieval Augmented Generation (RAG) grounds a language model in your own data. " +
				"Relevant documents are retrieved with vector search and passed to the model as context, " +
				"so answers cite trusted sources instead of relying on training data alone.",
		},
		{
			ID:       "azure-ml",
			Title:    "Azure Machine Learning",
			Category: "Machine Learning",
			Source:   "Azure Documentation",
			Content: "Azure Machine Learning is a cloud service for accelerating and managing the machine " +
				"learning project lifecycle. Teams can train, deploy and monitor models with MLOps " +
				"pipelines, managed compute and a model registry.",
		},
		{
			ID:       "azure-cognitive-services",
			Title:    "Azure AI Services",
			Category: "AI Services",
			Source:   "Azure Documentation",
			Content: "Azure AI Services offer prebuilt models for vision, speech, language and decision " +
				"tasks through REST APIs and SDKs. Developers add capabilities such as translation, " +
				"sentiment analysis and OCR without training their own models.",
		},
	}
}

// Sample sales dataset dimensions.
var (
	sampleRegions  = []string{"North", "South", "East", "West"}
	sampleProducts = []string{"Laptop", "Monitor", "Keyboard", "Headset"}
	sampleMonths   = []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05", "2024-06"}
	samplePrices   = map[string]float64{"Laptop": 1200, "Monitor": 300, "Keyboard": 80, "Headset": 150}
)

// SampleSalesDataset returns a deterministic monthly sales table.
func SampleSalesDataset() *domain.Dataset {
	ds := &domain.Dataset{
		Name:    "sample_sales.csv",
		Columns: []string{"month", "region", "product", "units", "unit_price", "revenue"},
	}

	for m, month := range sampleMonths {
		for r, region := range sampleRegions {
			for p, product := range sampleProducts {
				// Spread units so regions and months differ without randomness.
				units := 10 + (m*7+r*5+p*3)%25
				price := samplePrices[product]
				ds.Rows = append(ds.Rows, []string{
					month,
					region,
					product,
					strconv.Itoa(units),
					fmt.Sprintf("%.2f", price),
					fmt.Sprintf("%.2f", float64(units)*price),
				})
			}
		}
	}
	return ds
}
