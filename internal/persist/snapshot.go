package persist

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tanepiper/teskooano-sub012/internal/body"
	coresys "github.com/tanepiper/teskooano-sub012/internal/core/system"
	"github.com/tanepiper/teskooano-sub012/internal/world"
)

// SnapshotRepo persists and restores full body-set snapshots.
type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Save writes one snapshot (header + all bodies) in a single transaction.
func (r *SnapshotRepo) Save(ctx context.Context, simTime float64, bodies []*body.Body) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var snapID int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO snapshots (sim_time) VALUES ($1) RETURNING id`,
		simTime,
	).Scan(&snapID); err != nil {
		return fmt.Errorf("snapshot insert: %w", err)
	}

	for _, b := range bodies {
		var pos, vel mgl64.Vec3
		hasPhys := b.Phys != nil
		if hasPhys {
			pos, vel = b.Phys.Position, b.Phys.Velocity
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO snapshot_bodies
			   (snapshot_id, body_id, name, kind, status, mass_kg, radius_m,
			    parent_id, current_parent_id, has_physics,
			    pos_x, pos_y, pos_z, vel_x, vel_y, vel_z, rotation_angle_rad)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
			snapID, b.ID, b.Name, string(b.Kind), string(b.Status),
			b.MassKg, b.RadiusM, b.ParentID, b.CurrentParentID, hasPhys,
			pos.X(), pos.Y(), pos.Z(), vel.X(), vel.Y(), vel.Z(),
			b.RotationAngleRad,
		); err != nil {
			return fmt.Errorf("snapshot body insert %s: %w", b.ID, err)
		}
	}

	return tx.Commit(ctx)
}

// LoadLatest restores the most recent snapshot. Returns sim time and the
// body set; orbit elements and rotation metadata are not persisted and
// must come from the catalog.
func (r *SnapshotRepo) LoadLatest(ctx context.Context) (float64, []*body.Body, error) {
	var snapID int64
	var simTime float64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, sim_time FROM snapshots ORDER BY taken_at DESC, id DESC LIMIT 1`,
	).Scan(&snapID, &simTime)
	if err != nil {
		return 0, nil, fmt.Errorf("load snapshot header: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT body_id, name, kind, status, mass_kg, radius_m,
		        parent_id, current_parent_id, has_physics,
		        pos_x, pos_y, pos_z, vel_x, vel_y, vel_z, rotation_angle_rad
		   FROM snapshot_bodies WHERE snapshot_id = $1 ORDER BY body_id`,
		snapID,
	)
	if err != nil {
		return 0, nil, fmt.Errorf("load snapshot bodies: %w", err)
	}
	defer rows.Close()

	var bodies []*body.Body
	for rows.Next() {
		var b body.Body
		var kind, status string
		var hasPhys bool
		var px, py, pz, vx, vy, vz float64
		if err := rows.Scan(&b.ID, &b.Name, &kind, &status, &b.MassKg,
			&b.RadiusM, &b.ParentID, &b.CurrentParentID, &hasPhys,
			&px, &py, &pz, &vx, &vy, &vz, &b.RotationAngleRad,
		); err != nil {
			return 0, nil, fmt.Errorf("scan snapshot body: %w", err)
		}
		b.Kind = body.Kind(kind)
		b.Status = body.Status(status)
		if hasPhys {
			b.Phys = &body.PhysicsState{
				Position: mgl64.Vec3{px, py, pz},
				Velocity: mgl64.Vec3{vx, vy, vz},
				MassKg:   b.MassKg,
			}
		} else {
			b.IgnorePhysics = true
		}
		bodies = append(bodies, &b)
	}
	return simTime, bodies, rows.Err()
}

// SnapshotSystem persists the world every N ticks. Phase 4 (Persist).
// Write failures are transient: logged, never fatal to the loop.
type SnapshotSystem struct {
	repo      *SnapshotRepo
	state     *world.State
	every     int
	log       *zap.Logger
	tickCount int
}

func NewSnapshotSystem(repo *SnapshotRepo, state *world.State, every int, log *zap.Logger) *SnapshotSystem {
	if every <= 0 {
		every = 6000
	}
	return &SnapshotSystem{repo: repo, state: state, every: every, log: log}
}

func (s *SnapshotSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *SnapshotSystem) Update(_ time.Duration) error {
	s.tickCount++
	if s.tickCount%s.every != 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.repo.Save(ctx, s.state.SimulationTime, s.state.Bodies()); err != nil {
		s.log.Warn("snapshot save failed", zap.Error(err))
		return nil
	}
	s.log.Debug("snapshot saved",
		zap.Float64("sim_time", s.state.SimulationTime),
		zap.Int("bodies", s.state.Len()))
	return nil
}
