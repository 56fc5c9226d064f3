package storage

import (
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/cloud-lever/roap/types"
	"github.com/cloud-lever/roap/util"
)

const COLLECTION_SOLUTIONS_I = "solutions_phase_i"
const COLLECTION_SOLUTIONS_II = "solutions_phase_ii"

type SolutionDAO struct {
	Server   string
	Database string
	db       *mgo.Database
}

var solutionDAO *SolutionDAO

//GetSolutionDAO returns the DAO for the solutions database
func GetSolutionDAO(server string, database string) *SolutionDAO {
	if solutionDAO == nil ||
		solutionDAO.Server != server || solutionDAO.Database != database {
		solutionDAO = &SolutionDAO{Server: server, Database: database}
	}
	return solutionDAO
}

//Connect to the database
func (dao *SolutionDAO) Connect() (*mgo.Database, error) {
	if dao.Server == "" {
		dao.Server = util.DEFAULT_DB_SERVER_SOLUTIONS
	}
	if dao.Database == "" {
		dao.Database = util.DEFAULT_DB_SOLUTIONS
	}
	session, err := mgo.Dial(dao.Server)
	if err != nil {
		return nil, err
	}
	dao.db = session.DB(dao.Database)
	return dao.db, nil
}

//Retrieve all the stored phase I solutions
func (dao *SolutionDAO) FindAllPhaseI() ([]types.SolutionI, error) {
	var solutions []types.SolutionI
	err := dao.db.C(COLLECTION_SOLUTIONS_I).Find(bson.M{}).All(&solutions)
	return solutions, err
}

//Retrieve all the stored phase II solutions
func (dao *SolutionDAO) FindAllPhaseII() ([]types.SolutionII, error) {
	var solutions []types.SolutionII
	err := dao.db.C(COLLECTION_SOLUTIONS_II).Find(bson.M{}).All(&solutions)
	return solutions, err
}

//Retrieve the phase I solution with the specified ID
func (dao *SolutionDAO) FindPhaseIByID(id string) (types.SolutionI, error) {
	var solution types.SolutionI
	err := dao.db.C(COLLECTION_SOLUTIONS_I).FindId(id).One(&solution)
	return solution, err
}

//Retrieve the phase II solution with the specified ID
func (dao *SolutionDAO) FindPhaseIIByID(id string) (types.SolutionII, error) {
	var solution types.SolutionII
	err := dao.db.C(COLLECTION_SOLUTIONS_II).FindId(id).One(&solution)
	return solution, err
}

//Retrieve the phase II solutions derived from a phase I solution
func (dao *SolutionDAO) FindPhaseIIByPreviousPhase(id string) ([]types.SolutionII, error) {
	var solutions []types.SolutionII
	err := dao.db.C(COLLECTION_SOLUTIONS_II).Find(bson.M{"previous_phase._id": id}).All(&solutions)
	return solutions, err
}

//Insert a new phase I solution, replacing any previous one with the same id
func (dao *SolutionDAO) InsertPhaseI(solution *types.SolutionI) error {
	_, err := dao.db.C(COLLECTION_SOLUTIONS_I).UpsertId(solution.ID, solution)
	return err
}

//Insert a new phase II solution, replacing any previous one with the same id
func (dao *SolutionDAO) InsertPhaseII(solution *types.SolutionII) error {
	_, err := dao.db.C(COLLECTION_SOLUTIONS_II).UpsertId(solution.ID, solution)
	return err
}

//Delete the phase I solution with the specified ID
func (dao *SolutionDAO) DeletePhaseIByID(id string) error {
	return dao.db.C(COLLECTION_SOLUTIONS_I).RemoveId(id)
}

//Delete the phase II solution with the specified ID
func (dao *SolutionDAO) DeletePhaseIIByID(id string) error {
	return dao.db.C(COLLECTION_SOLUTIONS_II).RemoveId(id)
}
