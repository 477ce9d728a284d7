package store

import (
	"time"

	"github.com/cppla/miniblog/models"
)

func seedTime(day int) time.Time {
	return time.Date(2024, time.January, day, 10, 0, 0, 0, time.UTC)
}

// DefaultPosts returns the sample articles a fresh install starts with.
func DefaultPosts() []models.Post {
	return []models.Post{
		{
			ID:      "1",
			Slug:    "getting-started-with-react-router",
			Title:   "Getting Started with React Router: Building Modern Web Apps",
			Summary: "Learn how to build a modern web application with React Router v7, covering SSR, data loading and routing basics.",
			Content: `<h2>What is React Router</h2>
<p>React Router is a routing library for React applications. Version 7 combines server-side rendering with client-side navigation.</p>

<h2>Highlights</h2>
<ul>
  <li><strong>Server-side rendering</strong>: SEO-friendly first paint</li>
  <li><strong>Data loading</strong>: route-based data fetching</li>
  <li><strong>Type safety</strong>: full TypeScript support</li>
  <li><strong>Performance</strong>: automatic code splitting</li>
</ul>

<h2>Basic usage</h2>
<p>Start by defining routes. Each route lives in its own module and can fetch data in a loader.</p>

<pre><code>export async function loader({ request }: Route.LoaderArgs) {
  const data = await fetchData();
  return json({ data });
}</code></pre>

<h2>Wrapping up</h2>
<p>React Router makes fast, modern web applications straightforward. The next article covers more advanced features.</p>`,
			Tags:        []string{"React", "React Router", "Web Development"},
			PublishedAt: seedTime(15),
			UpdatedAt:   seedTime(15),
			Status:      models.StatusPublished,
		},
		{
			ID:      "2",
			Slug:    "ssr-and-data-loading",
			Title:   "SSR and Data Loading Best Practices",
			Summary: "How to combine server-side rendering with efficient data loading in React Router.",
			Content: `<h2>Why server-side rendering</h2>
<p>Rendering on the server brings a few concrete benefits:</p>

<ul>
  <li>Better SEO because crawlers see the full content</li>
  <li>Faster first paint since HTML arrives ready to display</li>
  <li>Control over meta tags on every page</li>
</ul>

<h2>Using loaders</h2>
<p>Loaders fetch data per route and keep fetching logic next to the route that needs it.</p>

<h2>Error handling</h2>
<p>An ErrorBoundary component renders a useful page when something goes wrong.</p>`,
			Tags:        []string{"React Router", "SSR", "Performance"},
			PublishedAt: seedTime(20),
			UpdatedAt:   seedTime(20),
			Status:      models.StatusPublished,
		},
		{
			ID:      "3",
			Slug:    "typescript-with-react-router",
			Title:   "Using React Router with TypeScript",
			Summary: "Combine React Router and TypeScript to build type-safe applications.",
			Content: `<h2>Why types matter</h2>
<p>TypeScript catches mistakes at compile time and speeds up everyday development.</p>

<h2>Route types</h2>
<p>React Router v7 generates types for every route, so loader and action arguments and return values are checked.</p>`,
			Tags:        []string{"TypeScript", "React Router"},
			PublishedAt: seedTime(25),
			UpdatedAt:   seedTime(25),
			Status:      models.StatusPublished,
		},
	}
}
