package store

const (
	// Atomic upsert keyed by story_id: at most one analysis per story,
	// last write wins.
	UpsertAnalysisQuery = `
		MERGE (a:StoryAnalysis {story_id: $story_id})
		SET a.themes = $themes,
			a.emotions = $emotions,
			a.time_period = $time_period,
			a.life_stage = $life_stage,
			a.locations = $locations,
			a.key_events = $key_events,
			a.people = $people,
			a.summary = $summary,
			a.confidence = $confidence,
			a.analyzed_at = $analyzed_at
		RETURN a.story_id AS story_id
	`

	GetAnalysisQuery = `
		MATCH (a:StoryAnalysis {story_id: $story_id})
		RETURN a.story_id AS story_id,
			a.themes AS themes,
			a.emotions AS emotions,
			a.time_period AS time_period,
			a.life_stage AS life_stage,
			a.locations AS locations,
			a.key_events AS key_events,
			a.people AS people,
			a.summary AS summary,
			a.confidence AS confidence,
			a.analyzed_at AS analyzed_at
	`

	// MERGE on the canonical pair key makes duplicate detection atomic:
	// if the returned id differs from the one we tried to write, another
	// relation already owns this unordered pair.
	CreateRelationQuery = `
		MERGE (r:Relation {pair_key: $pair_key})
		ON CREATE SET r.id = $id,
			r.requester_id = $requester_id,
			r.recipient_id = $recipient_id,
			r.type = $type,
			r.status = $status,
			r.approved_by_admin = false,
			r.admin_approved_by = '',
			r.admin_approved_at = '',
			r.created_at = $created_at
		RETURN r.id AS id
	`

	relationFields = `
		r.id AS id,
			r.pair_key AS pair_key,
			r.requester_id AS requester_id,
			r.recipient_id AS recipient_id,
			r.type AS type,
			r.status AS status,
			r.approved_by_admin AS approved_by_admin,
			r.admin_approved_by AS admin_approved_by,
			r.admin_approved_at AS admin_approved_at,
			r.created_at AS created_at
	`

	GetRelationQuery = `
		MATCH (r:Relation {id: $id})
		RETURN ` + relationFields

	SetRelationStatusQuery = `
		MATCH (r:Relation {id: $id})
		SET r.status = $status
		RETURN r.id AS id
	`

	AdminApproveRelationQuery = `
		MATCH (r:Relation {id: $id})
		SET r.status = 'approved',
			r.approved_by_admin = true,
			r.admin_approved_by = $admin_id,
			r.admin_approved_at = $admin_approved_at
		RETURN r.id AS id
	`

	DeleteRelationQuery = `
		MATCH (r:Relation {id: $id})
		DETACH DELETE r
	`

	PendingForRecipientQuery = `
		MATCH (r:Relation {recipient_id: $user_id, status: 'pending'})
		RETURN ` + relationFields

	RelationsForUserQuery = `
		MATCH (r:Relation {status: $status})
		WHERE r.requester_id = $user_id OR r.recipient_id = $user_id
		RETURN ` + relationFields

	// Feeds the family-group suggester; the whole approved graph is
	// small enough to cluster in memory.
	ApprovedRelationsQuery = `
		MATCH (r:Relation {status: 'approved'})
		RETURN ` + relationFields

	// Rows awaiting ratification where both parties belong to the
	// admin's circle (membership list passed in, admin included).
	PendingRatificationQuery = `
		MATCH (r:Relation {status: 'approved', approved_by_admin: false})
		WHERE r.requester_id IN $member_ids AND r.recipient_id IN $member_ids
		RETURN ` + relationFields

	SaveStoryQuery = `
		MERGE (s:Story {id: $id})
		SET s.circle_id = $circle_id,
			s.author_id = $author_id,
			s.title = $title,
			s.content = $content,
			s.media = $media,
			s.created_at = $created_at,
			s.updated_at = $updated_at
		RETURN s.id AS id
	`

	GetStoryQuery = `
		MATCH (s:Story {id: $id})
		RETURN s.id AS id,
			s.circle_id AS circle_id,
			s.author_id AS author_id,
			s.title AS title,
			s.content AS content,
			s.media AS media,
			s.created_at AS created_at,
			s.updated_at AS updated_at
	`

	SaveCircleQuery = `
		MERGE (c:Circle {id: $id})
		SET c.name = $name,
			c.admin_id = $admin_id,
			c.member_ids = $member_ids
		RETURN c.id AS id
	`

	GetCircleQuery = `
		MATCH (c:Circle {id: $id})
		RETURN c.id AS id,
			c.name AS name,
			c.admin_id AS admin_id,
			c.member_ids AS member_ids
	`
)
